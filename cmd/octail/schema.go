package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/calumba-holding/spacebot/opencode"
)

type wireShape struct {
	name  string
	value any
}

// wireShapes lists the decoded shapes the schema command can describe.
func wireShapes() []wireShape {
	return []wireShape{
		{"envelope", opencode.Envelope{}},
		{"message", opencode.MessageInfo{}},
		{"text-part", opencode.TextPart{}},
		{"tool-part", opencode.ToolPart{}},
		{"step-start-part", opencode.StepStartPart{}},
		{"step-finish-part", opencode.StepFinishPart{}},
		{"tool-state-pending", opencode.ToolStatePending{}},
		{"tool-state-running", opencode.ToolStateRunning{}},
		{"tool-state-completed", opencode.ToolStateCompleted{}},
		{"tool-state-error", opencode.ToolStateError{}},
	}
}

var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Print JSON Schemas for the event wire shapes",
	Long: `Schema prints the JSON Schema of the decoded wire shapes, either all
of them keyed by name or a single named one (e.g. "tool-part").`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			for _, shape := range wireShapes() {
				if shape.name == args[0] {
					return printSchema(newReflector().Reflect(shape.value))
				}
			}
			return fmt.Errorf("unknown type %q", args[0])
		}

		out := make(map[string]*jsonschema.Schema, len(wireShapes()))
		reflector := newReflector()
		for _, shape := range wireShapes() {
			out[shape.name] = reflector.Reflect(shape.value)
		}
		return printSchema(out)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference: true, // Inline all definitions instead of using $ref
		ExpandedStruct: true,
	}
}

func printSchema(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
