package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink receives the snapshot of a successful submit. It runs synchronously
// inside Submit; whatever it does with the snapshot (logging, forwarding) is
// its own business, including handling its own failures.
type Sink func(ctx context.Context, snapshot Snapshot) error

// NopSink discards snapshots.
func NopSink() Sink {
	return func(context.Context, Snapshot) error { return nil }
}

// EchoSink writes each snapshot to w as two-space indented JSON, one document
// per submit.
func EchoSink(w io.Writer) Sink {
	return func(_ context.Context, snapshot Snapshot) error {
		if w == nil {
			return errors.New("form: echo sink writer is nil")
		}
		payload, err := json.MarshalIndent(snapshot.Clone(), "", "  ")
		if err != nil {
			return fmt.Errorf("form: encode snapshot: %w", err)
		}
		payload = append(payload, '\n')
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("form: write snapshot: %w", err)
		}
		return nil
	}
}

// LogSink records each snapshot as a structured log entry tagged with a fresh
// submission id.
func LogSink(logger *zap.Logger) Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(_ context.Context, snapshot Snapshot) error {
		logger.Info("contact form submitted",
			zap.String("submission_id", uuid.NewString()),
			zap.String("inquiry_type", snapshot.InquiryType),
			zap.Strings("service", snapshot.Service),
			zap.String("company", snapshot.Company),
			zap.String("name", snapshot.Name),
			zap.String("email", snapshot.Email),
			zap.String("address", snapshot.Address),
			zap.Int("content_length", len([]rune(snapshot.Content))),
		)
		return nil
	}
}

// MultiSink calls each sink in order and stops at the first error.
func MultiSink(sinks ...Sink) Sink {
	return func(ctx context.Context, snapshot Snapshot) error {
		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			if err := sink(ctx, snapshot.Clone()); err != nil {
				return err
			}
		}
		return nil
	}
}
