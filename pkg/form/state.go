package form

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

var (
	// ErrSubmitInProgress is returned when Submit is re-entered while the sink
	// for a previous submit is still running.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrUnknownField is returned when a change targets a field the form does
	// not carry.
	ErrUnknownField = errors.New("form: unknown field")
)

// InvalidError reports a submit blocked by validation. Result holds every
// issue found at the time of the attempt.
type InvalidError struct {
	Result validation.Result
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("form: %d invalid field(s)", e.Result.Count())
}

// Snapshot is the complete set of field values handed to a Sink.
type Snapshot = model.Values

// State is the Form State of one form instance: current values, which fields
// the user has touched, the derived validation result and the submitting
// flag. A State belongs to a single event stream and is not safe for
// concurrent use.
type State struct {
	schema     *validation.Schema
	values     model.Values
	touched    map[string]bool
	result     validation.Result
	validated  bool
	submitting bool
}

// New returns an empty form validated by schema. A nil schema falls back to
// the bundled contact schema.
func New(schema *validation.Schema) *State {
	if schema == nil {
		schema = validation.Contact()
	}
	return &State{
		schema:  schema,
		touched: make(map[string]bool),
	}
}

// Values returns a copy of the current values.
func (s *State) Values() model.Values {
	return s.values.Clone()
}

// Set assigns a single-valued field, marks it touched and revalidates the
// whole form.
func (s *State) Set(field, value string) error {
	if !s.values.SetText(field, normalise(value)) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.touch(field)
	return nil
}

// SetSelection replaces a multi-valued field. Duplicates are dropped keeping
// the first occurrence so the order the user picked values in survives.
func (s *State) SetSelection(field string, values []string) error {
	if _, ok := s.values.Selection(field); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.values.SetSelection(field, dedupe(values))
	s.touch(field)
	return nil
}

// Toggle checks or unchecks one value of a multi-valued field. Checked values
// are appended, so the selection keeps click order.
func (s *State) Toggle(field, value string, checked bool) error {
	current, ok := s.values.Selection(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	value = normalise(value)

	next := make([]string, 0, len(current)+1)
	present := false
	for _, existing := range current {
		if existing == value {
			present = true
			if !checked {
				continue
			}
		}
		next = append(next, existing)
	}
	if checked && !present {
		next = append(next, value)
	}
	s.values.SetSelection(field, next)
	s.touch(field)
	return nil
}

// Blur marks a field touched and revalidates without changing its value.
func (s *State) Blur(field string) error {
	if !s.known(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.touch(field)
	return nil
}

// Restore replaces every value at once and marks touched as the fields the
// user has already interacted with. It is how a state picks up a page that
// was rendered with values, such as a rejected submit or browser-restored
// input. Text is normalised and selections deduplicated as in Set and
// SetSelection.
func (s *State) Restore(values model.Values, touched []string) error {
	for _, field := range touched {
		if !s.known(field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	next := values.Clone()
	for _, field := range textFields {
		value, _ := next.Text(field)
		next.SetText(field, normalise(value))
	}
	next.Service = dedupe(next.Service)

	s.values = next
	s.touched = make(map[string]bool, len(touched))
	for _, field := range touched {
		s.touched[field] = true
	}
	s.Validate()
	return nil
}

// Touched reports whether the user has interacted with field, or a submit
// was attempted.
func (s *State) Touched(field string) bool {
	return s.touched[field]
}

// Validated reports whether validation has run since the form was created or
// last reset.
func (s *State) Validated() bool {
	return s.validated
}

// Result returns the validation result for the current values.
func (s *State) Result() validation.Result {
	return s.result
}

// Errors returns every field currently invalid, touched or not. It is empty
// until validation has run.
func (s *State) Errors() validation.Errors {
	return s.result.Errors()
}

// VisibleErrors returns the subset of Errors a renderer should display: only
// fields the user has touched.
func (s *State) VisibleErrors() validation.Errors {
	all := s.result.Errors()
	out := make(validation.Errors, len(all))
	for field, message := range all {
		if s.touched[field] {
			out[field] = message
		}
	}
	return out
}

// ErrorCount is the number of invalid fields.
func (s *State) ErrorCount() int {
	return s.result.Count()
}

// Valid reports the form-level state. A form that has never been validated
// counts as valid, so the submit control starts enabled.
func (s *State) Valid() bool {
	return s.result.Valid()
}

// Submitting reports whether a sink call is in flight.
func (s *State) Submitting() bool {
	return s.submitting
}

// Validate reruns the schema over the current values and returns the result.
func (s *State) Validate() validation.Result {
	s.result = s.schema.Validate(s.values)
	s.validated = true
	return s.result
}

// Submit runs the submission lifecycle: validate every field, hand a snapshot
// to sink, then reset. The sink runs synchronously and at most once per call;
// re-entering Submit from inside the sink returns ErrSubmitInProgress. When
// the sink fails the values are kept so the user can retry.
func (s *State) Submit(ctx context.Context, sink Sink) (Snapshot, error) {
	if s.submitting {
		return Snapshot{}, ErrSubmitInProgress
	}
	if sink == nil {
		return Snapshot{}, errors.New("form: sink is nil")
	}

	for _, field := range s.schema.Fields() {
		s.touched[field] = true
	}
	result := s.Validate()
	if !result.Valid() {
		return Snapshot{}, &InvalidError{Result: result}
	}

	snapshot := s.values.Clone()
	s.submitting = true
	err := callSink(ctx, sink, snapshot)
	s.submitting = false
	if err != nil {
		return Snapshot{}, fmt.Errorf("form: sink: %w", err)
	}

	s.Reset()
	return snapshot, nil
}

// Reset returns every field to its initial value and clears touched and
// validation state.
func (s *State) Reset() {
	s.values = model.Values{}
	s.touched = make(map[string]bool)
	s.result = validation.Result{}
	s.validated = false
}

func callSink(ctx context.Context, sink Sink, snapshot Snapshot) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return sink(ctx, snapshot.Clone())
}

func (s *State) touch(field string) {
	s.touched[field] = true
	s.Validate()
}

func (s *State) known(field string) bool {
	if _, ok := s.values.Text(field); ok {
		return true
	}
	_, ok := s.values.Selection(field)
	return ok
}

var textFields = []string{
	model.FieldInquiryType,
	model.FieldCompany,
	model.FieldName,
	model.FieldEmail,
	model.FieldAddress,
	model.FieldContent,
}

func normalise(value string) string {
	return norm.NFC.String(value)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = normalise(value)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
