package html

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/render/template"
)

type formView struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Action       string               `json:"action"`
	LiveEndpoint string               `json:"liveEndpoint"`
	Submit       model.SubmitAction   `json:"submit"`
	Submitting   bool                 `json:"submitting"`
	Hidden       []render.HiddenField `json:"hidden"`
}

type fieldView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Control      string       `json:"control"`
	InputType    string       `json:"inputType"`
	Autocomplete string       `json:"autocomplete"`
	Label        string       `json:"label"`
	Placeholder  string       `json:"placeholder"`
	Required     bool         `json:"required"`
	Group        bool         `json:"group"`
	Value        string       `json:"value"`
	Options      []optionView `json:"options"`
	Error        string       `json:"error"`
}

type optionView struct {
	ID      string `json:"id"`
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

var autocompleteHints = map[string]string{
	model.FieldCompany: "organization",
	model.FieldName:    "name",
	model.FieldEmail:   "email",
	model.FieldAddress: "street-address",
}

// componentRenderer renders one field at a time: the control template first,
// then the shared field chrome around it.
type componentRenderer struct {
	templates template.TemplateRenderer
}

func (r *componentRenderer) render(field model.Field, opts render.RenderOptions) (string, error) {
	component, err := componentFor(field.Control)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", field.Name, err)
	}

	view := buildFieldView(field, opts)
	control, err := r.templates.RenderTemplate("templates/components/"+component, map[string]any{
		"field": view,
	})
	if err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", component, field.Name, err)
	}

	markup, err := r.templates.RenderTemplate("templates/field", map[string]any{
		"field":   view,
		"control": strings.TrimSpace(control),
	})
	if err != nil {
		return "", fmt.Errorf("render chrome for field %q: %w", field.Name, err)
	}
	return markup, nil
}

func componentFor(control model.Control) (string, error) {
	switch control {
	case model.ControlRadio:
		return "radio", nil
	case model.ControlCheckbox:
		return "checkbox", nil
	case model.ControlText, model.ControlEmail:
		return "input", nil
	case model.ControlTextarea:
		return "textarea", nil
	default:
		return "", fmt.Errorf("unsupported control %q", control)
	}
}

func buildFieldView(field model.Field, opts render.RenderOptions) fieldView {
	id := controlID(field.Name)
	view := fieldView{
		ID:           id,
		Name:         field.Name,
		Control:      string(field.Control),
		Autocomplete: autocompleteHints[field.Name],
		Label:        field.Label,
		Placeholder:  field.Placeholder,
		Required:     field.Required,
		Group:        field.Control == model.ControlRadio || field.Control == model.ControlCheckbox,
		Error:        opts.Errors[field.Name],
	}

	switch field.Control {
	case model.ControlEmail:
		view.InputType = "email"
	case model.ControlText:
		view.InputType = "text"
	}

	if !view.Group {
		view.Value, _ = opts.Values.Text(field.Name)
		return view
	}

	selected := selectedValues(field, opts.Values)
	view.Options = make([]optionView, 0, len(field.Options))
	for idx, option := range field.Options {
		view.Options = append(view.Options, optionView{
			ID:      id + "-" + strconv.Itoa(idx),
			Value:   option.Value,
			Label:   option.DisplayLabel(),
			Checked: slices.Contains(selected, option.Value),
		})
	}
	return view
}

func selectedValues(field model.Field, values model.Values) []string {
	if field.Multiple() {
		selected, _ := values.Selection(field.Name)
		return selected
	}
	if value, _ := values.Text(field.Name); value != "" {
		return []string{value}
	}
	return nil
}

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "cf-" + trimmed
}
