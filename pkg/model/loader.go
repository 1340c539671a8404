package model

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS reads a single JSON or YAML form definition from fsys and returns the
// normalised model.
func LoadFS(fsys fs.FS, path string) (FormModel, error) {
	if fsys == nil {
		return FormModel{}, fmt.Errorf("model: filesystem is nil")
	}
	if !isDefinitionFile(path) {
		return FormModel{}, fmt.Errorf("model: %s is not a JSON or YAML file", path)
	}

	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return FormModel{}, fmt.Errorf("model: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML definition. source is only used in error
// messages.
func Parse(data []byte, source string) (FormModel, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return FormModel{}, fmt.Errorf("model: file %s is empty", source)
	}

	var form FormModel
	if err := json.Unmarshal(data, &form); err != nil {
		form = FormModel{}
		if err := yaml.Unmarshal(data, &form); err != nil {
			return FormModel{}, fmt.Errorf("model: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}

	return normalise(form, source)
}

func normalise(form FormModel, source string) (FormModel, error) {
	form.ID = strings.TrimSpace(form.ID)
	form.Title = strings.TrimSpace(form.Title)
	if len(form.Fields) == 0 {
		return FormModel{}, fmt.Errorf("model: file %s defines no fields", source)
	}

	seen := make(map[string]struct{}, len(form.Fields))
	fields := make([]Field, 0, len(form.Fields))
	for idx, raw := range form.Fields {
		field := cloneField(raw)
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return FormModel{}, fmt.Errorf("model: file %s field #%d has an empty name", source, idx)
		}
		if _, exists := seen[field.Name]; exists {
			return FormModel{}, fmt.Errorf("model: file %s defines duplicate field %q", source, field.Name)
		}
		seen[field.Name] = struct{}{}

		if field.Control == "" {
			field.Control = ControlText
		}
		switch field.Control {
		case ControlRadio, ControlCheckbox:
			if len(field.Options) == 0 {
				return FormModel{}, fmt.Errorf("model: file %s field %q (%s) declares no options", source, field.Name, field.Control)
			}
		case ControlText, ControlEmail, ControlTextarea:
		default:
			return FormModel{}, fmt.Errorf("model: file %s field %q has unknown control %q", source, field.Name, field.Control)
		}
		fields = append(fields, field)
	}
	form.Fields = fields
	return form, nil
}

func cloneField(field Field) Field {
	out := field
	out.Options = append([]Option(nil), field.Options...)
	if len(field.Messages) > 0 {
		out.Messages = make(map[string]string, len(field.Messages))
		for key, value := range field.Messages {
			out.Messages[strings.TrimSpace(key)] = value
		}
	}
	return out
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
