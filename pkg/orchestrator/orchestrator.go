package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
	"github.com/goliatone/go-contactform/pkg/shell"
	"github.com/goliatone/go-contactform/pkg/validation"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithForm sets the base form definition. Defaults to the bundled contact
// form.
func WithForm(form model.FormModel) Option {
	return func(o *Orchestrator) {
		o.form = form.Clone()
		o.formSet = true
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithRenderers registers renderers on the orchestrator's registry, creating
// one when none was supplied.
func WithRenderers(renderers ...render.Renderer) Option {
	return func(o *Orchestrator) {
		o.extraRenderers = append(o.extraRenderers, renderers...)
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that rewrites the form before
// decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the form model before
// rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector resolves the theme applied to page output.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themes = selector
	}
}

// Orchestrator coordinates the pipeline from form definition to rendered
// output. Missing dependencies fall back to the built-in implementations
// (bundled contact form, HTML renderer).
type Orchestrator struct {
	form            model.FormModel
	formSet         bool
	registry        *render.Registry
	extraRenderers  []render.Renderer
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	themes          theme.ThemeSelector
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Page asks for HTML output wrapped in the site shell.
type Page struct {
	// ErrorCount switches the document title to the error title when positive.
	ErrorCount  int
	Lang        string
	Stylesheets []string
	Scripts     []string
}

// Request describes one render.
type Request struct {
	// Form supplies an already prepared model. Transformers and decorators are
	// skipped for it; when nil the base form is prepared.
	Form *model.FormModel

	// Renderer names the renderer to use. Empty means the default renderer.
	Renderer string

	// RenderOptions carries per-request values, visible errors and hidden
	// inputs.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant select the page theme when a selector is
	// configured.
	ThemeName    string
	ThemeVariant string

	// Page wraps HTML output in the site shell when set.
	Page *Page
}

// Prepare returns a copy of the base form with the transformer and decorators
// applied. The result is checked against the validation schema builder so
// unsupported definitions fail before anything renders.
func (o *Orchestrator) Prepare(ctx context.Context) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	form := o.form.Clone()
	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, err
	}
	if _, err := validation.FromModel(form); err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: %w", err)
	}
	return form, nil
}

// Generate renders the request and returns the output bytes (HTML for the
// default renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	var form model.FormModel
	if req.Form != nil {
		form = *req.Form
	} else {
		prepared, err := o.Prepare(ctx)
		if err != nil {
			return nil, err
		}
		form = prepared
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	if req.Page == nil {
		return output, nil
	}

	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		return nil, fmt.Errorf("orchestrator: renderer %q does not produce HTML pages", renderer.Name())
	}
	return o.wrapPage(ctx, form, req, output)
}

// Renderer resolves name, falling back to the default renderer and then to
// the first registered one.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) wrapPage(ctx context.Context, form model.FormModel, req Request, body []byte) ([]byte, error) {
	themeCfg, err := o.themeConfig(req)
	if err != nil {
		return nil, err
	}

	props := shell.Props{
		Title:         form.Title,
		Description:   form.Description,
		TitleOverride: shell.PageTitle(form.Title, req.Page.ErrorCount),
		Lang:          req.Page.Lang,
		Stylesheets:   req.Page.Stylesheets,
		Scripts:       req.Page.Scripts,
		Theme:         themeCfg,
	}

	var buf bytes.Buffer
	if err := shell.Layout(props, templ.Raw(string(body))).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("orchestrator: render page: %w", err)
	}
	return buf.Bytes(), nil
}

func (o *Orchestrator) themeConfig(req Request) (*theme.RendererConfig, error) {
	if o.themes == nil {
		return nil, nil
	}
	selection, err := o.themes.Select(req.ThemeName, req.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return shell.ThemeFromSelection(selection), nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if len(o.decorators) == 0 || form == nil {
		return nil
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if !o.formSet {
		o.form = model.Contact()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		if len(o.extraRenderers) == 0 {
			renderer, err := htmlrenderer.New()
			if err != nil {
				o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
				return
			}
			o.extraRenderers = append(o.extraRenderers, renderer)
		}
	}
	for _, renderer := range o.extraRenderers {
		if renderer == nil {
			continue
		}
		if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: %w", err)
			return
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
