package testsupport

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// FieldOutline is what a user sees of one rendered field.
type FieldOutline struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Required bool     `json:"required,omitempty"`
	Controls []string `json:"controls"`
	Options  []string `json:"options,omitempty"`
	Selected []string `json:"selected,omitempty"`
	Value    string   `json:"value,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// PageOutline reduces rendered form markup to its visible structure so golden
// files survive whitespace and attribute-order changes.
type PageOutline struct {
	Title    string         `json:"title,omitempty"`
	Headings []string       `json:"headings"`
	Hidden   []string       `json:"hidden,omitempty"`
	Fields   []FieldOutline `json:"fields"`
	Submit   string         `json:"submit"`
	Footer   string         `json:"footer,omitempty"`
}

// Outline walks a parsed page or fragment. Hidden error regions are left out.
func Outline(doc *html.Node) PageOutline {
	var out PageOutline
	if title := Find(doc, ByTag("title")); title != nil {
		out.Title = Text(title)
	}
	for _, heading := range FindAll(doc, isHeading) {
		out.Headings = append(out.Headings, heading.Data+": "+Text(heading))
	}
	for _, input := range FindAll(doc, ByAttr("type", "hidden")) {
		name, _ := Attr(input, "name")
		value, _ := Attr(input, "value")
		out.Hidden = append(out.Hidden, name+"="+value)
	}
	for _, wrapper := range FindAll(doc, func(n *html.Node) bool { return HasAttr(n, "data-field") }) {
		out.Fields = append(out.Fields, outlineField(wrapper))
	}
	if submit := Find(doc, ByAttr("type", "submit")); submit != nil {
		out.Submit = Text(submit)
	}
	if footer := Find(doc, ByTag("footer")); footer != nil {
		out.Footer = Text(footer)
	}
	return out
}

func outlineField(wrapper *html.Node) FieldOutline {
	var field FieldOutline
	field.Name, _ = Attr(wrapper, "data-field")
	if label := Find(wrapper, ByAttr("class", "cf-label")); label != nil && label.FirstChild != nil {
		field.Label = strings.TrimSpace(label.FirstChild.Data)
	}
	field.Required = Find(wrapper, ByAttr("class", "cf-badge")) != nil

	for _, control := range FindAll(wrapper, isControl) {
		id, _ := Attr(control, "id")
		field.Controls = append(field.Controls, id)

		kind, _ := Attr(control, "type")
		switch {
		case kind == "radio" || kind == "checkbox":
			if HasAttr(control, "checked") {
				value, _ := Attr(control, "value")
				field.Selected = append(field.Selected, value)
			}
		case control.Data == "textarea":
			field.Value = Text(control)
		default:
			field.Value, _ = Attr(control, "value")
		}
	}
	for _, option := range FindAll(wrapper, ByAttr("class", "cf-option")) {
		field.Options = append(field.Options, Text(option))
	}
	if region := Find(wrapper, ByAttr("class", "cf-error")); region != nil && !HasAttr(region, "hidden") {
		field.Error = Text(region)
	}
	return field
}

func isHeading(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func isControl(n *html.Node) bool {
	return n.Data == "textarea" || (n.Data == "input" && !ByAttr("type", "hidden")(n))
}

// MustLoadOutline reads a golden outline written by WriteGolden.
func MustLoadOutline(t *testing.T, path string) PageOutline {
	t.Helper()
	var outline PageOutline
	if err := json.Unmarshal(MustReadGolden(t, path), &outline); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	return outline
}
