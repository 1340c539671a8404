package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithSink receives the snapshot once every field is valid.
func WithSink(sink form.Sink) Option {
	return func(r *Renderer) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithTheme replaces the message styles.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithConfirm asks the submit action's title as a yes/no question before the
// snapshot is handed to the sink.
func WithConfirm(enabled bool) Option {
	return func(r *Renderer) {
		r.confirm = enabled
	}
}

// Renderer fills a form by prompting field by field in the terminal. Every
// answer goes through a form.State, so the terminal sees the same messages as
// the browser.
type Renderer struct {
	driver  PromptDriver
	sink    form.Sink
	theme   Theme
	confirm bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, no-op sink).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:  NewSurveyDriver(nil, nil, nil),
		sink:    form.NopSink(),
		theme:   DefaultTheme(),
		confirm: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format returned by Render.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render runs a prompt session and returns the submitted snapshot as JSON.
// opts.Values pre-fills the answers.
func (r *Renderer) Render(ctx context.Context, fm model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	schema, err := validation.FromModel(fm)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	session := NewSession(fm, form.New(schema), r.driver, r.theme)
	if err := session.Prefill(opts.Values); err != nil {
		return nil, err
	}

	snapshot, err := r.run(ctx, fm, session)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode snapshot: %w", err)
	}
	return payload, nil
}

func (r *Renderer) run(ctx context.Context, fm model.FormModel, session *Session) (form.Snapshot, error) {
	if err := session.Fill(ctx); err != nil {
		return form.Snapshot{}, err
	}

	if r.confirm {
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: confirmMessage(fm), Default: true})
		if err != nil {
			return form.Snapshot{}, err
		}
		if !ok {
			return form.Snapshot{}, ErrAborted
		}
	}

	snapshot, err := session.State().Submit(ctx, r.sink)
	if err != nil {
		return form.Snapshot{}, fmt.Errorf("tui: %w", err)
	}
	return snapshot, nil
}

func confirmMessage(fm model.FormModel) string {
	if fm.Submit.Title != "" {
		return fm.Submit.Title
	}
	return fm.Submit.Label
}

// Session walks the fields of one form state.
type Session struct {
	form   model.FormModel
	state  *form.State
	driver PromptDriver
	theme  Theme
}

// NewSession binds a prompt driver to st.
func NewSession(fm model.FormModel, st *form.State, driver PromptDriver, theme Theme) *Session {
	return &Session{form: fm, state: st, driver: driver, theme: theme}
}

// State exposes the underlying form state.
func (s *Session) State() *form.State {
	return s.state
}

// Prefill copies non-empty values into the state. They become the prompt
// defaults.
func (s *Session) Prefill(values model.Values) error {
	for _, field := range s.form.Fields {
		if field.Multiple() {
			if selected, _ := values.Selection(field.Name); len(selected) > 0 {
				if err := s.state.SetSelection(field.Name, selected); err != nil {
					return fmt.Errorf("tui: prefill %q: %w", field.Name, err)
				}
			}
			continue
		}
		if value, _ := values.Text(field.Name); value != "" {
			if err := s.state.Set(field.Name, value); err != nil {
				return fmt.Errorf("tui: prefill %q: %w", field.Name, err)
			}
		}
	}
	return nil
}

// Fill prompts every field in order, repeating a prompt until that field's
// own error clears.
func (s *Session) Fill(ctx context.Context) error {
	for _, field := range s.form.Fields {
		if err := s.fillField(ctx, field); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) fillField(ctx context.Context, field model.Field) error {
	for {
		if err := s.prompt(ctx, field); err != nil {
			return err
		}
		message := s.state.VisibleErrors()[field.Name]
		if message == "" {
			return nil
		}
		if err := s.driver.Info(ctx, s.theme.errorLine(message)); err != nil {
			return err
		}
	}
}

func (s *Session) prompt(ctx context.Context, field model.Field) error {
	message := promptMessage(field)
	current := s.state.Values()

	switch field.Control {
	case model.ControlRadio:
		labels := optionLabels(field)
		value, _ := current.Text(field.Name)
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: optionIndex(field, value),
			Help:         field.Placeholder,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Options) {
			return fmt.Errorf("%w for %q", ErrNoChoice, field.Name)
		}
		return s.state.Set(field.Name, field.Options[idx].Value)

	case model.ControlCheckbox:
		selected, _ := current.Selection(field.Name)
		defaults := make([]int, 0, len(selected))
		for _, value := range selected {
			if idx := optionIndex(field, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field),
			Defaults: defaults,
			Help:     field.Placeholder,
		})
		if err != nil {
			return err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		return s.state.SetSelection(field.Name, values)

	case model.ControlTextarea:
		value, _ := current.Text(field.Name)
		answer, err := s.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: value,
			Help:    field.Placeholder,
		})
		if err != nil {
			return err
		}
		return s.state.Set(field.Name, answer)

	default:
		value, _ := current.Text(field.Name)
		answer, err := s.driver.Input(ctx, InputConfig{
			Message: message,
			Default: value,
			Help:    field.Placeholder,
		})
		if err != nil {
			return err
		}
		return s.state.Set(field.Name, answer)
	}
}

func promptMessage(field model.Field) string {
	if field.Required {
		return field.Label + " (必須)"
	}
	return field.Label
}

func optionLabels(field model.Field) []string {
	labels := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		labels = append(labels, option.DisplayLabel())
	}
	return labels
}

func optionIndex(field model.Field, value string) int {
	return slices.IndexFunc(field.Options, func(option model.Option) bool {
		return option.Value == value
	})
}
