package render

import (
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// RenderOptions describe per-request data renderers use to fill in controls
// without touching the form model.
type RenderOptions struct {
	// Action is the URL the form posts to. Empty means the current URL.
	Action string
	// LiveEndpoint is the websocket path the runtime script connects to for
	// live validation. Empty disables it.
	LiveEndpoint string
	// Values pre-populates the rendered controls.
	Values model.Values
	// Errors holds the messages to display, keyed by field name. Renderers show
	// every entry, so callers pass only touched fields.
	Errors validation.Errors
	// Submitting disables the submit control.
	Submitting bool
	// Hidden lists extra hidden inputs such as a CSRF token.
	Hidden map[string]string
}

// FromState builds options reflecting st: its values, the errors of touched
// fields and the submitting flag.
func FromState(st *form.State) RenderOptions {
	if st == nil {
		return RenderOptions{}
	}
	return RenderOptions{
		Values:     st.Values(),
		Errors:     st.VisibleErrors(),
		Submitting: st.Submitting(),
	}
}
