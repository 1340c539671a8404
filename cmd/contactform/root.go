package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/internal/logging"
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
	"github.com/goliatone/go-contactform/pkg/render"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
	"github.com/goliatone/go-contactform/pkg/renderers/tui"
	"github.com/goliatone/go-contactform/pkg/shell"
)

// viperKeyAnnotation marks flags that override a configuration key.
const viperKeyAnnotation = "contactform/viper-key"

// app carries state shared by every command once configuration is loaded.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logger     *zap.Logger

	// newDriver builds the prompt driver for the prompt command.
	newDriver func(cmd *cobra.Command) tui.PromptDriver
}

func newApp() *app {
	return &app{
		newDriver: func(cmd *cobra.Command) tui.PromptDriver {
			return tui.NewSurveyDriver(os.Stdin, os.Stdout, cmd.ErrOrStderr())
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "contactform",
		Short: "Serve and render the サンプル株式会社 contact form",
		Long: `contactform serves the contact form over HTTP with live validation,
renders it to static HTML, collects it interactively in the terminal and
prints the OpenAPI contract of the submitted snapshot.

Configuration sources, highest priority first:
  flags                      --port, --log-level, ...
  environment                CONTACTFORM_SERVER_PORT, CONTACTFORM_LOG_LEVEL, ...
  config file                .contactform.yml or --config
  built-in defaults`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is .contactform.yml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")
	flags.String("definition", "", "form definition file (YAML or JSON)")
	flags.String("preset", "", "copy override file (YAML)")
	flags.String("theme", "", "theme manifest file (YAML)")
	flags.String("theme-variant", "", "theme variant")
	bindFlag(flags, "log-level", "log.level")
	bindFlag(flags, "log-format", "log.format")
	bindFlag(flags, "definition", "form.definition")
	bindFlag(flags, "preset", "form.preset")
	bindFlag(flags, "theme", "theme.manifest")
	bindFlag(flags, "theme-variant", "theme.variant")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newPromptCmd(a),
		newSchemaCmd(a),
	)
	return root
}

// bindFlag records which configuration key a flag overrides. The binding is
// applied in setup, once the Viper instance exists.
func bindFlag(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, viperKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[viperKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(keys[0], f)
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, zap.ErrorOutput(zapcore.AddSync(cmd.ErrOrStderr())))
	if err != nil {
		return err
	}

	a.v = v
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.String("config_file", v.ConfigFileUsed()))
	return nil
}

// orchestrator assembles the render pipeline from configuration: form
// definition, copy preset, HTML renderer (optionally reading templates from
// disk), theme and any extra renderers.
func (a *app) orchestrator(extra ...render.Renderer) (*orchestrator.Orchestrator, error) {
	options := []orchestrator.Option{}

	if path := a.cfg.Form.Definition; path != "" {
		fm, err := model.LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithForm(fm))
	}

	if path := a.cfg.Form.Preset; path != "" {
		preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformer(preset))
	}

	html, err := htmlrenderer.New(htmlrenderer.WithTemplatesDir(a.cfg.Form.TemplatesDir))
	if err != nil {
		return nil, err
	}
	renderers := append([]render.Renderer{html}, extra...)
	options = append(options, orchestrator.WithRenderers(renderers...))

	selector, err := shell.LoadSelector(a.cfg.Theme.Manifest, a.cfg.Theme.Variant)
	if err != nil {
		return nil, err
	}
	if selector != nil {
		options = append(options, orchestrator.WithThemeSelector(selector))
	}

	return orchestrator.New(options...), nil
}

// sink maps form.sink onto a Sink. echo writes to w.
func (a *app) sink(w io.Writer) form.Sink {
	switch a.cfg.Form.Sink {
	case config.SinkEcho:
		return form.EchoSink(w)
	case config.SinkNone:
		return form.NopSink()
	default:
		return form.LogSink(a.logger)
	}
}
