package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contactform/pkg/orchestrator"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output      string
		fragment    bool
		assetPrefix string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the empty contact form page as static HTML",
		Long: `Render the empty contact form. By default the output is a complete page
with the site shell; --fragment prints only the form markup.

Examples:
  contactform render -o contact.html
  contactform render --fragment --preset presets/en.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			req := orchestrator.Request{}
			if !fragment {
				req.Page = &orchestrator.Page{
					Stylesheets: []string{assetPrefix + htmlrenderer.StylesheetName},
					Scripts:     []string{assetPrefix + htmlrenderer.RuntimeScriptName},
				}
			}
			out, err := orch.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "render only the form markup")
	cmd.Flags().StringVar(&assetPrefix, "asset-prefix", "/assets/", "URL prefix of the stylesheet and runtime script")
	cmd.Flags().String("templates-dir", "", "read templates from this directory")
	bindFlag(cmd.Flags(), "templates-dir", "form.templates_dir")
	return cmd
}
