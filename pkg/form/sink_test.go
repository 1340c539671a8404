package form_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-contactform/pkg/form"
)

func TestEchoSink_WritesIndentedJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := form.EchoSink(&buf)

	err := sink(context.Background(), form.Snapshot{
		InquiryType: "その他",
		Service:     []string{"サービスB", "サービスA"},
		Company:     "Acme",
		Name:        "Taro",
		Email:       "taro@acme.com",
		Content:     "hi",
	})
	if err != nil {
		t.Fatalf("echo: %v", err)
	}

	want := `{
  "inquiryType": "その他",
  "service": [
    "サービスB",
    "サービスA"
  ],
  "company": "Acme",
  "name": "Taro",
  "email": "taro@acme.com",
  "address": "",
  "content": "hi"
}
`
	if buf.String() != want {
		t.Fatalf("unexpected echo output\nwant: %q\n got: %q", want, buf.String())
	}
}

func TestEchoSink_EmptyServiceIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := form.EchoSink(&buf)(context.Background(), form.Snapshot{}); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"service": []`)) {
		t.Fatalf("service should encode as an empty array, got %s", buf.String())
	}
}

func TestLogSink_RecordsSubmission(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := form.LogSink(zap.New(core))

	err := sink(context.Background(), form.Snapshot{
		InquiryType: "見積もり依頼",
		Service:     []string{"サービスA"},
		Email:       "taro@acme.com",
		Content:     "お願いします",
	})
	if err != nil {
		t.Fatalf("log sink: %v", err)
	}

	entries := logs.FilterMessage("contact form submitted").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "taro@acme.com" {
		t.Fatalf("email not logged: %v", fields)
	}
	if fields["content_length"] != int64(6) {
		t.Fatalf("content length should count runes, got %v", fields["content_length"])
	}
	if id, _ := fields["submission_id"].(string); len(id) != 36 {
		t.Fatalf("expected uuid submission id, got %v", fields["submission_id"])
	}
}

func TestMultiSink_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string

	sink := form.MultiSink(
		func(context.Context, form.Snapshot) error { calls = append(calls, "first"); return nil },
		nil,
		func(context.Context, form.Snapshot) error { calls = append(calls, "second"); return boom },
		func(context.Context, form.Snapshot) error { calls = append(calls, "third"); return nil },
	)

	if err := sink(context.Background(), form.Snapshot{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(calls) != 2 || calls[1] != "second" {
		t.Fatalf("unexpected call order %v", calls)
	}
}

func TestNopSink(t *testing.T) {
	if err := form.NopSink()(context.Background(), form.Snapshot{}); err != nil {
		t.Fatalf("nop sink: %v", err)
	}
}
