package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"school-assistant-backend/internal/schema"
)

var inputPath string

var invokeCmd = &cobra.Command{
	Use:   "invoke [capability]",
	Short: "Run one capability against the model and print the result",
	Long: `Reads the capability's input as JSON (from -f, or stdin when -f is "-"),
validates it, calls the model once and prints the validated output.

Example:
  school-assistant invoke teacher-morale -f morale.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&inputPath, "file", "f", "-", "input JSON file")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	c, ok := schema.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown capability %q (have %v)", args[0], schema.Capabilities())
	}
	if cfg.GeminiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	raw, err := readInput(cmd.InOrStdin(), inputPath)
	if err != nil {
		return err
	}
	in := schema.NewInput(c)
	if err := json.Unmarshal(raw, in); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	invoker, err := newInvoker(cmd.Context())
	if err != nil {
		return err
	}

	out := schema.NewOutput(c)
	if err := invoker.Invoke(cmd.Context(), c, in, out); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}
