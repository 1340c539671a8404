package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	rendertemplate "github.com/goliatone/go-contactform/pkg/render/template"
	gotemplate "github.com/goliatone/go-contactform/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	icon             string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithErrorIcon replaces the warning glyph shown beside error messages. The
// markup is sanitised; anything that is not SVG drawing markup is dropped.
func WithErrorIcon(svg string) Option {
	return func(cfg *config) {
		cfg.icon = svg
	}
}

// Renderer produces the contact form as an HTML fragment. The page chrome is
// added by the shell package.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), icon: WarningIcon}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	icon := SanitizeIcon(cfg.icon)
	if icon == "" {
		icon = SanitizeIcon(WarningIcon)
	}
	if err := renderer.GlobalContext(map[string]any{"errorIcon": icon}); err != nil {
		return nil, fmt.Errorf("html renderer: share error icon: %w", err)
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Templates exposes the underlying template renderer so callers can reload it
// when the template directory changes.
func (r *Renderer) Templates() rendertemplate.TemplateRenderer {
	return r.templates
}

// Render returns the form markup with values, visible errors and hidden
// inputs from opts applied.
func (r *Renderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	components := &componentRenderer{templates: r.templates}

	var fields strings.Builder
	for _, field := range form.Fields {
		markup, err := components.render(field, opts)
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		fields.WriteString(markup)
	}

	view := formView{
		ID:           form.ID,
		Title:        form.Title,
		Description:  form.Description,
		Action:       opts.Action,
		LiveEndpoint: opts.LiveEndpoint,
		Submit:       form.Submit,
		Submitting:   opts.Submitting,
		Hidden:       render.SortedHiddenFields(opts.Hidden),
	}

	result, err := r.templates.RenderTemplate("templates/form", map[string]any{
		"form":   view,
		"fields": fields.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
