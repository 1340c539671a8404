package validation

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Schema is an ordered set of rules. It holds no state of its own, so one
// Schema can serve any number of forms concurrently.
type Schema struct {
	rules  []Rule
	fields []string
}

// NewSchema builds a schema evaluating rules in the given order.
func NewSchema(rules ...Rule) *Schema {
	s := &Schema{rules: make([]Rule, 0, len(rules))}
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if rule.Check == nil || rule.Field == "" {
			continue
		}
		s.rules = append(s.rules, rule)
		if _, ok := seen[rule.Field]; !ok {
			seen[rule.Field] = struct{}{}
			s.fields = append(s.fields, rule.Field)
		}
	}
	return s
}

// Fields lists the fields that carry at least one rule, in schema order.
func (s *Schema) Fields() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.fields...)
}

// Validate runs every rule against values. Each rule sees the whole value set,
// so the result is a pure function of values.
func (s *Schema) Validate(values model.Values) Result {
	if s == nil {
		return Result{}
	}
	var issues []Issue
	for _, rule := range s.rules {
		if issue := rule.Check(values); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return Result{issues: issues}
}

// FromModel derives a schema from field definitions:
//   - radio: OneOf its options (only when required)
//   - checkbox: NonEmptySubset when required, Subset otherwise
//   - email: Email when required
//   - text/textarea: Required when required
//
// Optional text fields get no rule.
func FromModel(form model.FormModel) (*Schema, error) {
	zero := model.Values{}
	var rules []Rule
	for _, field := range form.Fields {
		required := field.Message(model.MessageRequired)
		if field.Required && required == "" {
			return nil, fmt.Errorf("validation: field %q is required but has no %q message", field.Name, model.MessageRequired)
		}

		switch field.Control {
		case model.ControlCheckbox:
			if _, ok := zero.Selection(field.Name); !ok {
				return nil, fmt.Errorf("validation: field %q is not a multi-valued field", field.Name)
			}
			allowed := optionValues(field)
			if field.Required {
				rules = append(rules, NonEmptySubset(field.Name, selectionOf(field.Name), allowed, required))
			} else {
				rules = append(rules, Subset(field.Name, selectionOf(field.Name), allowed, field.Message(model.MessageFormat)))
			}
		default:
			if _, ok := zero.Text(field.Name); !ok {
				return nil, fmt.Errorf("validation: field %q is not a known text field", field.Name)
			}
			if !field.Required {
				continue
			}
			switch field.Control {
			case model.ControlRadio:
				rules = append(rules, OneOf(field.Name, textOf(field.Name), optionValues(field), required))
			case model.ControlEmail:
				format := field.Message(model.MessageFormat)
				if format == "" {
					return nil, fmt.Errorf("validation: email field %q has no %q message", field.Name, model.MessageFormat)
				}
				rules = append(rules, Email(field.Name, textOf(field.Name), required, format))
			default:
				rules = append(rules, Required(field.Name, textOf(field.Name), required))
			}
		}
	}
	return NewSchema(rules...), nil
}

var (
	contactOnce   sync.Once
	contactSchema *Schema
)

// Contact returns the schema for the bundled contact form.
func Contact() *Schema {
	contactOnce.Do(func() {
		schema, err := FromModel(model.Contact())
		if err != nil {
			panic(err)
		}
		contactSchema = schema
	})
	return contactSchema
}

func optionValues(field model.Field) []string {
	out := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, opt.Value)
	}
	return out
}
