package validation

import (
	"regexp"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Check is a pure predicate over the form values. It returns nil when the
// field is valid.
type Check func(values model.Values) *Issue

// Rule binds a Check to the field it reports on.
type Rule struct {
	Field string
	Check Check
}

// TextGetter extracts a single-valued field.
type TextGetter func(values model.Values) string

// SelectionGetter extracts a multi-valued field.
type SelectionGetter func(values model.Values) []string

// emailPattern follows the HTML living standard grammar for type=email but
// requires at least one dot in the domain.
var emailPattern = regexp.MustCompile(
	`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@` +
		`[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?` +
		`(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`,
)

// EmailPattern returns the expression used by Email so other layers (HTML
// pattern attribute, OpenAPI schema) can advertise the same constraint.
func EmailPattern() string {
	return emailPattern.String()
}

// IsEmail reports whether value has the shape local-part@domain.tld.
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// Required fails with KindMissingRequired when the field is the empty string.
// Whitespace counts as content.
func Required(field string, get TextGetter, message string) Rule {
	return Rule{
		Field: field,
		Check: func(values model.Values) *Issue {
			if get(values) != "" {
				return nil
			}
			return &Issue{Field: field, Kind: KindMissingRequired, Message: message}
		},
	}
}

// Email fails with KindMissingRequired when empty and KindInvalidFormat when
// the value does not look like an address.
func Email(field string, get TextGetter, requiredMessage, formatMessage string) Rule {
	return Rule{
		Field: field,
		Check: func(values model.Values) *Issue {
			value := get(values)
			if value == "" {
				return &Issue{Field: field, Kind: KindMissingRequired, Message: requiredMessage}
			}
			if !IsEmail(value) {
				return &Issue{Field: field, Kind: KindInvalidFormat, Message: formatMessage}
			}
			return nil
		},
	}
}

// OneOf fails when the value is empty or not one of allowed. Both cases share
// message since the user-facing remedy is the same.
func OneOf(field string, get TextGetter, allowed []string, message string) Rule {
	set := toSet(allowed)
	return Rule{
		Field: field,
		Check: func(values model.Values) *Issue {
			value := get(values)
			if value == "" {
				return &Issue{Field: field, Kind: KindMissingRequired, Message: message}
			}
			if _, ok := set[value]; !ok {
				return &Issue{Field: field, Kind: KindInvalidChoice, Message: message}
			}
			return nil
		},
	}
}

// NonEmptySubset fails when nothing is selected or a selection is not one of
// allowed.
func NonEmptySubset(field string, get SelectionGetter, allowed []string, message string) Rule {
	set := toSet(allowed)
	return Rule{
		Field: field,
		Check: func(values model.Values) *Issue {
			selected := get(values)
			if len(selected) == 0 {
				return &Issue{Field: field, Kind: KindEmptySelection, Message: message}
			}
			for _, value := range selected {
				if _, ok := set[value]; !ok {
					return &Issue{Field: field, Kind: KindInvalidChoice, Message: message}
				}
			}
			return nil
		},
	}
}

// Subset accepts an empty selection but rejects unknown values. Used for
// optional checkbox groups.
func Subset(field string, get SelectionGetter, allowed []string, message string) Rule {
	set := toSet(allowed)
	return Rule{
		Field: field,
		Check: func(values model.Values) *Issue {
			for _, value := range get(values) {
				if _, ok := set[value]; !ok {
					return &Issue{Field: field, Kind: KindInvalidChoice, Message: message}
				}
			}
			return nil
		},
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func textOf(name string) TextGetter {
	return func(values model.Values) string {
		value, _ := values.Text(name)
		return value
	}
}

func selectionOf(name string) SelectionGetter {
	return func(values model.Values) []string {
		value, _ := values.Selection(name)
		return value
	}
}
