package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
	"github.com/goliatone/go-contactform/pkg/renderers/tui"
)

func newPromptCmd(a *app) *cobra.Command {
	var (
		output string
		yes    bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill in the contact form interactively in the terminal",
		Long: `Ask for each field in turn, re-asking until the answer is valid, then
submit the snapshot to the configured sink and print it as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The snapshot is printed anyway, so an echo sink would only
			// duplicate it.
			sink := a.sink(cmd.ErrOrStderr())
			if a.cfg.Form.Sink == config.SinkEcho {
				sink = form.NopSink()
			}

			theme := tui.DefaultTheme()
			if plain {
				theme = tui.PlainTheme()
			}
			renderer := tui.New(
				tui.WithPromptDriver(a.newDriver(cmd)),
				tui.WithSink(sink),
				tui.WithTheme(theme),
				tui.WithConfirm(!yes),
			)

			orch, err := a.orchestrator(renderer)
			if err != nil {
				return err
			}
			out, err := orch.Generate(cmd.Context(), orchestrator.Request{Renderer: renderer.Name()})
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Submission cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the submitted snapshot to this file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "submit without asking for confirmation")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colored output")
	cmd.Flags().String("sink", "", "where submissions go (log, echo, none)")
	bindFlag(cmd.Flags(), "sink", "form.sink")
	return cmd
}
