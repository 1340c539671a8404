package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	messages     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRenderer_CollectsAndSubmits(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0},
		multiIdx:  [][]int{{2, 0}},
		inputs:    []string{"Acme", "Taro", "taro@acme.com", ""},
		textAreas: []string{"お願いします"},
		confirm:   []bool{true},
	}
	var received []form.Snapshot
	renderer := New(
		WithPromptDriver(driver),
		WithTheme(PlainTheme()),
		WithSink(func(_ context.Context, snap form.Snapshot) error {
			received = append(received, snap)
			return nil
		}),
	)

	out, err := renderer.Render(context.Background(), model.Contact(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := form.Snapshot{
		InquiryType: "見積もり依頼",
		Service:     []string{"サービスC", "サービスA"},
		Company:     "Acme",
		Name:        "Taro",
		Email:       "taro@acme.com",
		Content:     "お願いします",
	}
	if len(received) != 1 {
		t.Fatalf("expected one sink call, got %d", len(received))
	}
	if diff := cmp.Diff(want, received[0]); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	var decoded form.Snapshot
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("no errors expected, got %v", driver.infoMessages)
	}
	if driver.messages[0] != "お問い合わせ種別 (必須)" {
		t.Fatalf("required prompts should be marked, got %q", driver.messages[0])
	}
}

func TestRenderer_RepromptsUntilFieldIsValid(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		multiIdx:  [][]int{{}, {1}},
		inputs:    []string{"", "Acme", "Taro", "not-an-email", "taro@acme.com", ""},
		textAreas: []string{"hi"},
		confirm:   []bool{true},
	}
	renderer := New(WithPromptDriver(driver), WithTheme(PlainTheme()))

	out, err := renderer.Render(context.Background(), model.Contact(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantInfo := []string{
		"⚠ 検討中のサービスを1つ以上選択してください",
		"⚠ 御社名は必須です",
		"⚠ メールアドレスの形式に誤りがあります",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("error messages mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(out), `"inquiryType": "採用に関するお問い合わせ"`) {
		t.Fatalf("radio answers should carry the option value, got %s", out)
	}
}

func TestRenderer_DeclinedConfirmAborts(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{2},
		multiIdx:  [][]int{{0}},
		inputs:    []string{"Acme", "Taro", "taro@acme.com", ""},
		textAreas: []string{"hi"},
		confirm:   []bool{false},
	}
	called := false
	renderer := New(
		WithPromptDriver(driver),
		WithTheme(PlainTheme()),
		WithSink(func(context.Context, form.Snapshot) error { called = true; return nil }),
	)

	if _, err := renderer.Render(context.Background(), model.Contact(), render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if called {
		t.Fatalf("sink must not run when the user declines")
	}
}

func TestRenderer_SinkErrorIsReturned(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{2},
		multiIdx:  [][]int{{0}},
		inputs:    []string{"Acme", "Taro", "taro@acme.com", ""},
		textAreas: []string{"hi"},
	}
	boom := errors.New("boom")
	renderer := New(
		WithPromptDriver(driver),
		WithConfirm(false),
		WithSink(func(context.Context, form.Snapshot) error { return boom }),
	)

	if _, err := renderer.Render(context.Background(), model.Contact(), render.RenderOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestRenderer_PrefillBecomesDefaults(t *testing.T) {
	fm := model.Contact()
	st := form.New(nil)
	session := NewSession(fm, st, &stubDriver{}, PlainTheme())

	if err := session.Prefill(model.Values{Company: "Acme", Service: []string{"サービスB"}}); err != nil {
		t.Fatalf("prefill: %v", err)
	}
	values := st.Values()
	if values.Company != "Acme" || len(values.Service) != 1 {
		t.Fatalf("prefill not applied: %+v", values)
	}
}

func TestRenderer_AbortPropagates(t *testing.T) {
	renderer := New(WithPromptDriver(&stubDriver{}))
	if _, err := renderer.Render(context.Background(), model.Contact(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error to propagate")
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))
	if r.Name() != "tui" || r.ContentType() != "application/json" {
		t.Fatalf("unexpected metadata %q %q", r.Name(), r.ContentType())
	}
}

func TestIndicesOfKeepsAnswerOrder(t *testing.T) {
	got := indicesOf([]string{"a", "b", "c"}, []string{"c", "a", "x"})
	if diff := cmp.Diff([]int{2, 0}, got); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
}
