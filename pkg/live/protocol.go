package live

import (
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// EventType names a client event.
type EventType string

const (
	EventChange EventType = "change"
	EventToggle EventType = "toggle"
	EventBlur   EventType = "blur"
	EventSubmit EventType = "submit"

	// EventSync carries every value the page shows, sent once the socket
	// opens so the session starts from what the user sees.
	EventSync EventType = "sync"
)

// Event is one client interaction.
type Event struct {
	Type    EventType `json:"type"`
	Field   string    `json:"field,omitempty"`
	Value   string    `json:"value,omitempty"`
	Values  []string  `json:"values,omitempty"`
	Checked bool      `json:"checked,omitempty"`

	// Form and Touched are set on sync events only.
	Form    *model.Values `json:"form,omitempty"`
	Touched []string      `json:"touched,omitempty"`
}

// MessageType names a server reply.
type MessageType string

const (
	MessageState     MessageType = "state"
	MessageSubmitted MessageType = "submitted"
	MessageError     MessageType = "error"
)

// Message is the server reply to an Event.
type Message struct {
	Type  MessageType `json:"type"`
	State StateView   `json:"state"`
	Error string      `json:"error,omitempty"`
}

// StateView is the client-facing projection of a form state.
type StateView struct {
	// Errors holds messages for touched fields only.
	Errors     validation.Errors `json:"errors"`
	ErrorCount int               `json:"errorCount"`
	Title      string            `json:"title"`
	Valid      bool              `json:"valid"`
	Submitting bool              `json:"submitting"`
}
