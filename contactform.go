package contactform

import (
	"context"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/internal/server"
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
	"github.com/goliatone/go-contactform/pkg/render"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describes per-request values and messages renderers use to
// fill in the form.
type RenderOptions = render.RenderOptions

// Snapshot is the payload handed to a Sink on a successful submission.
type Snapshot = form.Snapshot

// Sink receives submissions.
type Sink = form.Sink

// AssetsPrefix is the URL prefix Handler serves the stylesheet and runtime
// script under.
const AssetsPrefix = server.PathAssets

// Templates exposes the embedded HTML templates so callers can copy them into
// a directory and override individual files.
func Templates() fs.FS {
	return htmlrenderer.TemplatesFS()
}

// AssetsFS exposes the stylesheet and runtime script so Go applications can
// serve them without a build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(contactform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return htmlrenderer.AssetsFS()
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// page tokens follow the selected theme and variant.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// GenerateHTML renders the empty contact form as a complete page that links
// the assets under AssetsPrefix.
func GenerateHTML(ctx context.Context, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Page: &orchestrator.Page{
			Stylesheets: []string{AssetsPrefix + htmlrenderer.StylesheetName},
			Scripts:     []string{AssetsPrefix + htmlrenderer.RuntimeScriptName},
		},
	})
}

// Handler returns the contact form HTTP handler with the default server
// settings: the page at "/", its assets and live validation. A nil logger
// discards logs and a nil sink logs submissions.
func Handler(logger *zap.Logger, sink Sink, options ...orchestrator.Option) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	serverOptions := []server.Option{
		server.WithLogger(logger),
		server.WithOrchestrator(orchestrator.New(options...)),
	}
	if sink != nil {
		serverOptions = append(serverOptions, server.WithSink(sink))
	}
	srv, err := server.New(config.Default().Server, serverOptions...)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}
