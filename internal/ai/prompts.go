package ai

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"school-assistant-backend/internal/schema"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type promptEntry struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

type prompt struct {
	system string
	tmpl   *template.Template
}

// Prompts holds one parsed instruction template per capability.
type Prompts struct {
	byCap map[schema.Capability]prompt
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
	"join": strings.Join,
}

// LoadPrompts parses the template file at path, or the built-in set when path is empty.
func LoadPrompts(path string) (*Prompts, error) {
	raw := defaultPrompts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts %s: %w", path, err)
		}
		raw = b
	}
	return ParsePrompts(raw)
}

func ParsePrompts(raw []byte) (*Prompts, error) {
	var entries map[string]promptEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	p := &Prompts{byCap: make(map[schema.Capability]prompt, len(entries))}
	for name, e := range entries {
		c, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("prompts: unknown capability %q", name)
		}
		t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(e.Template)
		if err != nil {
			return nil, fmt.Errorf("prompts: %s: %w", name, err)
		}
		p.byCap[c] = prompt{system: strings.TrimSpace(e.System), tmpl: t}
	}

	for _, c := range schema.Capabilities() {
		if _, ok := p.byCap[c]; !ok {
			return nil, fmt.Errorf("prompts: no template for %q", c)
		}
	}
	return p, nil
}

// Render returns the system instruction and user prompt for c.
func (p *Prompts) Render(c schema.Capability, input any) (string, string, error) {
	pr, ok := p.byCap[c]
	if !ok {
		return "", "", fmt.Errorf("no prompt for capability %q", c)
	}

	var buf bytes.Buffer
	if err := pr.tmpl.Execute(&buf, input); err != nil {
		return "", "", fmt.Errorf("render %s prompt: %w", c, err)
	}
	return pr.system, strings.TrimSpace(buf.String()), nil
}
