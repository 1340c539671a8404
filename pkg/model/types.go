package model

// Control is the input widget a field renders as.
type Control string

const (
	ControlRadio    Control = "radio"
	ControlCheckbox Control = "checkbox"
	ControlText     Control = "text"
	ControlEmail    Control = "email"
	ControlTextarea Control = "textarea"
)

// Message keys looked up in Field.Messages by the validation schema builder.
const (
	MessageRequired = "required"
	MessageFormat   = "format"
)

// Canonical field names of the contact form.
const (
	FieldInquiryType = "inquiryType"
	FieldService     = "service"
	FieldCompany     = "company"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldAddress     = "address"
	FieldContent     = "content"
)

// Option is one selectable value of a radio or checkbox group. Label and Value
// are independent: the rendered text is not required to match what is
// submitted.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel returns Label, falling back to Value.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// Field models an individual input of the form. Struct fields are annotated so
// renderers and loaders can serialise them directly.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Control     Control           `json:"control" yaml:"control"`
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Messages    map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Multiple reports whether the field collects a set of values.
func (f Field) Multiple() bool {
	return f.Control == ControlCheckbox
}

// HasOption reports whether value is one of the declared options.
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Message returns the message registered under key, or "".
func (f Field) Message(key string) string {
	if f.Messages == nil {
		return ""
	}
	return f.Messages[key]
}

// SubmitAction describes the submit control.
type SubmitAction struct {
	Label string `json:"label" yaml:"label"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// FormModel is the top-level representation renderers and the validation
// schema builder consume.
type FormModel struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Submit      SubmitAction `json:"submit" yaml:"submit"`
	Fields      []Field      `json:"fields" yaml:"fields"`
}

// Field returns the field with the given name.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Clone returns a copy whose fields, options and messages can be modified
// without affecting m.
func (m FormModel) Clone() FormModel {
	out := m
	if m.Fields != nil {
		out.Fields = make([]Field, 0, len(m.Fields))
		for _, field := range m.Fields {
			out.Fields = append(out.Fields, cloneField(field))
		}
	}
	return out
}
