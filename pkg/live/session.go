package live

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// ErrUnknownEvent is returned for event types the session does not handle.
var ErrUnknownEvent = errors.New("live: unknown event")

// TitleFunc composes the document title for the current error count.
type TitleFunc func(errorCount int) string

// Session binds one form state to one event stream. It is not safe for
// concurrent use; callers feed it events from a single read loop.
type Session struct {
	state *form.State
	sink  form.Sink
	title TitleFunc
}

// NewSession creates a session over a fresh form state.
func NewSession(schema *validation.Schema, sink form.Sink, title TitleFunc) *Session {
	if sink == nil {
		sink = form.NopSink()
	}
	if title == nil {
		title = func(int) string { return "" }
	}
	return &Session{
		state: form.New(schema),
		sink:  sink,
		title: title,
	}
}

// State exposes the underlying form state.
func (s *Session) State() *form.State {
	return s.state
}

// Apply runs evt against the form state and returns the reply for the
// client. Validation failures are replies, not errors; the returned error is
// set only when the event itself was malformed or the sink failed.
func (s *Session) Apply(ctx context.Context, evt Event) (Message, error) {
	var err error
	switch evt.Type {
	case EventChange:
		if evt.Values != nil {
			err = s.state.SetSelection(evt.Field, evt.Values)
		} else {
			err = s.state.Set(evt.Field, evt.Value)
		}
	case EventToggle:
		err = s.state.Toggle(evt.Field, evt.Value, evt.Checked)
	case EventBlur:
		err = s.state.Blur(evt.Field)
	case EventSync:
		var values model.Values
		if evt.Form != nil {
			values = *evt.Form
		}
		err = s.state.Restore(values, evt.Touched)
	case EventSubmit:
		return s.submit(ctx)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEvent, evt.Type)
	}
	if err != nil {
		return s.reply(MessageError, err.Error()), err
	}
	return s.reply(MessageState, ""), nil
}

func (s *Session) submit(ctx context.Context) (Message, error) {
	_, err := s.state.Submit(ctx, s.sink)
	if err == nil {
		return s.reply(MessageSubmitted, ""), nil
	}

	var invalid *form.InvalidError
	if errors.As(err, &invalid) {
		return s.reply(MessageState, ""), nil
	}
	return s.reply(MessageError, err.Error()), err
}

// Snapshot returns the current state view without applying an event.
func (s *Session) Snapshot() Message {
	return s.reply(MessageState, "")
}

func (s *Session) reply(kind MessageType, errText string) Message {
	count := s.state.ErrorCount()
	return Message{
		Type: kind,
		State: StateView{
			Errors:     s.state.VisibleErrors(),
			ErrorCount: count,
			Title:      s.title(count),
			Valid:      s.state.Valid(),
			Submitting: s.state.Submitting(),
		},
		Error: errText,
	}
}
