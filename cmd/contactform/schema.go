package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/openapi"
)

func newSchemaCmd(a *app) *cobra.Command {
	var (
		output   string
		check    string
		contract string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI contract of submitted snapshots",
		Long: `Print the OpenAPI 3 document describing the snapshot a successful submit
delivers, or check a snapshot JSON file against it.

Examples:
  contactform schema -o openapi.json
  contactform schema --check snapshot.json
  contactform schema --check snapshot.json --contract openapi.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			fm, err := orch.Prepare(cmd.Context())
			if err != nil {
				return err
			}

			raw, err := openapi.MarshalDocument(cmd.Context(), fm)
			if err != nil {
				return err
			}
			if contract != "" {
				if raw, err = os.ReadFile(contract); err != nil {
					return fmt.Errorf("read contract: %w", err)
				}
			}

			if check != "" {
				return checkSnapshot(cmd, raw, check)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := os.WriteFile(output, append(raw, '\n'), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&check, "check", "", "validate this snapshot JSON file instead of printing the contract")
	cmd.Flags().StringVar(&contract, "contract", "", "check against this OpenAPI document instead of the generated one")
	return cmd
}

func checkSnapshot(cmd *cobra.Command, rawContract []byte, path string) error {
	_, schema, err := openapi.Load(cmd.Context(), rawContract)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot model.Values
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snapshot); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	if err := openapi.ValidateSnapshot(schema, snapshot); err != nil {
		return fmt.Errorf("snapshot %s does not match the contract: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return nil
}
