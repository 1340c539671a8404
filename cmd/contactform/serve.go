package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the contact form over HTTP",
		Long: `Serve the contact form page, accept form posts and validate live over a
websocket while the visitor types.

Examples:
  contactform serve
  contactform serve --port 9000 --sink echo
  contactform serve --templates-dir ./templates --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "host to bind to")
	flags.IntP("port", "p", 0, "port to serve on")
	flags.String("sink", "", "where submissions go (log, echo, none)")
	flags.String("templates-dir", "", "read templates from this directory")
	flags.Bool("watch", false, "reload templates when files in --templates-dir change")
	flags.Bool("live", true, "enable live validation over a websocket")
	bindFlag(flags, "host", "server.host")
	bindFlag(flags, "port", "server.port")
	bindFlag(flags, "sink", "form.sink")
	bindFlag(flags, "templates-dir", "form.templates_dir")
	bindFlag(flags, "watch", "form.watch_templates")
	bindFlag(flags, "live", "server.live_validation")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithLogger(a.logger),
		server.WithSink(a.sink(cmd.OutOrStdout())),
		server.WithOrchestrator(orch),
	}
	if a.cfg.Form.WatchTemplates {
		options = append(options, server.WithTemplateWatch(a.cfg.Form.TemplatesDir))
	}

	srv, err := server.New(a.cfg.Server, options...)
	if err != nil {
		return err
	}

	a.logger.Info("starting contact form server",
		zap.String("addr", a.cfg.Server.Addr()),
		zap.Bool("live_validation", a.cfg.Server.LiveValidation),
		zap.String("sink", a.cfg.Form.Sink),
	)
	return srv.Run(cmd.Context())
}
