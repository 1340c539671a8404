package validation

import (
	"fmt"
	"sort"
)

// Kind classifies why a field failed validation.
type Kind string

const (
	// KindMissingRequired marks a required text or choice field left empty.
	KindMissingRequired Kind = "missing_required_field"
	// KindInvalidFormat marks a value whose shape is wrong (email).
	KindInvalidFormat Kind = "invalid_format"
	// KindEmptySelection marks a multi-select left without any choice.
	KindEmptySelection Kind = "empty_selection_set"
	// KindInvalidChoice marks a value outside the declared options. Browsers
	// never send one; crafted requests can.
	KindInvalidChoice Kind = "invalid_choice"
)

// Issue is a single field-level validation failure. It satisfies error so
// callers can return it directly.
type Issue struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("validation: %s: %s", i.Field, i.Message)
}

// Errors maps field names to the human-readable message of their issue.
type Errors map[string]string

// Has reports whether field carries an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names sorted for deterministic output.
func (e Errors) Fields() []string {
	if len(e) == 0 {
		return nil
	}
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Result is the output of running a Schema once. Issues keep schema order.
type Result struct {
	issues []Issue
}

// Issues returns a copy of the issues in schema order.
func (r Result) Issues() []Issue {
	if len(r.issues) == 0 {
		return nil
	}
	return append([]Issue(nil), r.issues...)
}

// Valid reports whether every rule passed.
func (r Result) Valid() bool {
	return len(r.issues) == 0
}

// Count is the number of fields currently invalid.
func (r Result) Count() int {
	return len(r.Errors())
}

// Errors returns the field → message mapping. When a field has several
// failing rules the first one in schema order wins.
func (r Result) Errors() Errors {
	out := make(Errors, len(r.issues))
	for _, issue := range r.issues {
		if _, exists := out[issue.Field]; exists {
			continue
		}
		out[issue.Field] = issue.Message
	}
	return out
}

// Issue returns the first issue recorded for field.
func (r Result) Issue(field string) (Issue, bool) {
	for _, issue := range r.issues {
		if issue.Field == field {
			return issue, true
		}
	}
	return Issue{}, false
}
