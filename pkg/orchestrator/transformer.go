package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Transformer mutates a FormModel before decorators run.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// Chain runs transformers in order and stops at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, form *model.FormModel) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, form); err != nil {
				return err
			}
		}
		return nil
	})
}

// PresetTransformer applies copy overrides loaded from a YAML (or JSON)
// document. Field names, controls and option values are fixed; only the
// wording changes:
//
//	title: Contact us
//	submit:
//	  label: Send
//	fields:
//	  company:
//	    label: Company
//	    placeholder: Your company or organisation
//	    messages:
//	      required: Company is required
//	  inquiryType:
//	    options:
//	      見積もり依頼: Request a quote
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Submit      presetSubmit           `yaml:"submit"`
	Fields      map[string]presetField `yaml:"fields"`
}

type presetSubmit struct {
	Label string `yaml:"label"`
	Title string `yaml:"title"`
}

type presetField struct {
	Label       string            `yaml:"label"`
	Placeholder string            `yaml:"placeholder"`
	Messages    map[string]string `yaml:"messages"`
	// Options maps option values to replacement labels.
	Options map[string]string `yaml:"options"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the overrides onto the supplied form. Unknown fields and
// option values are errors so typos do not silently do nothing.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := t.document
	if doc.Title != "" {
		form.Title = doc.Title
	}
	if doc.Description != "" {
		form.Description = doc.Description
	}
	if doc.Submit.Label != "" {
		form.Submit.Label = doc.Submit.Label
	}
	if doc.Submit.Title != "" {
		form.Submit.Title = doc.Submit.Title
	}

	for name, patch := range doc.Fields {
		field := findField(form.Fields, name)
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		if err := applyFieldPatch(field, patch); err != nil {
			return err
		}
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch presetField) error {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if len(patch.Messages) > 0 {
		field.Messages = mergeStringMap(field.Messages, patch.Messages)
	}
	for value, label := range patch.Options {
		idx := optionIndex(field.Options, value)
		if idx < 0 {
			return fmt.Errorf("preset transformer: field %q has no option %q", field.Name, value)
		}
		field.Options[idx].Label = label
	}
	return nil
}

func findField(fields []model.Field, name string) *model.Field {
	name = strings.TrimSpace(name)
	for idx := range fields {
		if fields[idx].Name == name {
			return &fields[idx]
		}
	}
	return nil
}

func optionIndex(options []model.Option, value string) int {
	for idx, opt := range options {
		if opt.Value == value {
			return idx
		}
	}
	return -1
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
