/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/cowdogmoo/cloudbuild-action/config"
)

func newSchemaCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		Args:  cobra.NoArgs,
		// The schema is static and needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := generateSchema()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), config.DirPermReadWriteExec); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(output, data, config.FilePermReadWrite); err != nil {
				return fmt.Errorf("failed to write schema file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Generated JSON schema: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output path for the JSON schema")
	return cmd
}

// generateSchema reflects config.Config into an indented JSON schema.
func generateSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		FieldNameTag:              "yaml",
	}

	schema := reflector.Reflect(&config.Config{})
	schema.ID = jsonschema.ID("https://github.com/cowdogmoo/cloudbuild-action/schema/config.json")
	schema.Title = "cloudbuild-action configuration"
	schema.Description = "Schema for the cloudbuild-action config.yaml file"
	if schema.Extras == nil {
		schema.Extras = make(map[string]interface{})
	}
	schema.Extras["cloudbuildActionVersion"] = version

	schema.Examples = []interface{}{
		map[string]interface{}{
			"gcp": map[string]interface{}{
				"project_id":    "my-project",
				"registry_host": "eu.gcr.io",
			},
			"image": map[string]interface{}{
				"name":       "app",
				"sources":    []string{"Dockerfile", "src"},
				"tag_latest": true,
			},
			"github": map[string]interface{}{
				"commit_status": map[string]interface{}{
					"description": "small",
				},
			},
		},
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
