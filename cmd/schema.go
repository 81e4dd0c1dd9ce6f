package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/tspack/tspack/pkg/settings"
)

func init() {
	rootCmd.AddCommand(newSchemaCmd())
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for tspack.yml",
		Long: `Generates a JSON schema describing the tspack.yml project file, for
editor autocompletion and validation.`,
		Args: cobra.NoArgs,
		RunE: runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&settings.FileConfig{})
	schema.Title = "tspack project configuration"
	schema.Description = "Schema for tspack.yml."

	// Every field falls through to user config, env, and flags.
	schema.Required = nil

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
