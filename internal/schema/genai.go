package schema

import "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func list(items *genai.Schema, desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: items}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}
