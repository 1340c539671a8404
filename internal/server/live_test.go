package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"

	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/live"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/testsupport"
	"github.com/goliatone/go-contactform/pkg/validation"
)

func dialLive(t *testing.T, s *Server) (*websocket.Conn, context.Context) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+PathLive, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func exchange(t *testing.T, ctx context.Context, conn *websocket.Conn, evt live.Event) live.Message {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, evt))
	var msg live.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

// pageSync builds the sync event the runtime script sends for a rendered
// page: every control value as shown, and the fields whose message is visible.
func pageSync(t *testing.T, body string) live.Event {
	t.Helper()
	doc := testsupport.ParseHTML(t, body)
	formNode := testsupport.MustFind(t, doc, testsupport.ByTag("form"), "form")

	values := model.Values{Service: []string{}}
	controls := testsupport.FindAll(formNode, func(n *xhtml.Node) bool {
		return n.Type == xhtml.ElementNode && (n.Data == "input" || n.Data == "textarea")
	})
	for _, control := range controls {
		name, _ := testsupport.Attr(control, "name")
		kind, _ := testsupport.Attr(control, "type")
		if name == "" || kind == "hidden" {
			continue
		}
		value, _ := testsupport.Attr(control, "value")
		switch {
		case control.Data == "textarea":
			values.SetText(name, testsupport.Text(control))
		case kind == "checkbox":
			if testsupport.HasAttr(control, "checked") {
				selected, _ := values.Selection(name)
				values.SetSelection(name, append(selected, value))
			}
		case kind == "radio":
			if testsupport.HasAttr(control, "checked") {
				values.SetText(name, value)
			}
		default:
			values.SetText(name, value)
		}
	}

	var touched []string
	for _, wrapper := range testsupport.FindAll(formNode, func(n *xhtml.Node) bool {
		return n.Type == xhtml.ElementNode && testsupport.HasAttr(n, "data-field")
	}) {
		box := testsupport.Find(wrapper, testsupport.ByAttr("class", "cf-error"))
		if box != nil && !testsupport.HasAttr(box, "hidden") {
			field, _ := testsupport.Attr(wrapper, "data-field")
			touched = append(touched, field)
		}
	}
	return live.Event{Type: live.EventSync, Form: &values, Touched: touched}
}

func TestLive_SyncMatchesRejectedPage(t *testing.T) {
	sink := &captureSink{}
	s := newTestServer(t, WithSink(sink.Sink()))
	h := s.Handler()
	cookie := fetchToken(t, h)

	values := filledForm()
	values.Set("email", "not-an-email")
	rec := postForm(t, h, cookie, values)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()

	conn, ctx := dialLive(t, s)
	msg := exchange(t, ctx, conn, pageSync(t, body))
	assert.Equal(t, live.MessageState, msg.Type)
	assert.Equal(t, 1, msg.State.ErrorCount)
	assert.Equal(t, pageTitle(t, body), msg.State.Title)
	assert.Equal(t, validation.Errors{"email": "メールアドレスの形式に誤りがあります"}, msg.State.Errors)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventChange, Field: "email", Value: "taro@acme.com"})
	assert.Equal(t, 0, msg.State.ErrorCount)
	assert.Empty(t, msg.State.Errors)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventSubmit})
	assert.Equal(t, live.MessageSubmitted, msg.Type)
	require.Len(t, sink.Snapshots(), 1)
	assert.Equal(t, "Acme", sink.Snapshots()[0].Company)
	assert.Equal(t, []string{"サービスA"}, sink.Snapshots()[0].Service)
}

func TestLive_SyncOfEmptyPageHidesErrors(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	conn, ctx := dialLive(t, s)
	msg := exchange(t, ctx, conn, pageSync(t, rec.Body.String()))
	assert.Equal(t, 6, msg.State.ErrorCount)
	assert.Empty(t, msg.State.Errors)
}

func TestLive_ValidatesAsTheUserTypes(t *testing.T) {
	conn, ctx := dialLive(t, newTestServer(t))

	msg := exchange(t, ctx, conn, live.Event{Type: live.EventChange, Field: "email", Value: "not-an-email"})
	assert.Equal(t, live.MessageState, msg.Type)
	assert.Equal(t, validation.Errors{"email": "メールアドレスの形式に誤りがあります"}, msg.State.Errors)
	assert.Equal(t, 6, msg.State.ErrorCount)
	assert.Equal(t, "6箇所の入力エラーがあります - お問い合わせフォーム", msg.State.Title)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventChange, Field: "email", Value: "taro@acme.com"})
	assert.Empty(t, msg.State.Errors)
	assert.Equal(t, 5, msg.State.ErrorCount)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventToggle, Field: "service", Value: "サービスB", Checked: true})
	assert.Equal(t, 4, msg.State.ErrorCount)
}

func TestLive_SubmitDeliversSnapshotAndResets(t *testing.T) {
	sink := &captureSink{}
	conn, ctx := dialLive(t, newTestServer(t, WithSink(sink.Sink())))

	for _, evt := range []live.Event{
		{Type: live.EventChange, Field: "inquiryType", Value: "見積もり依頼"},
		{Type: live.EventToggle, Field: "service", Value: "サービスA", Checked: true},
		{Type: live.EventChange, Field: "company", Value: "Acme"},
		{Type: live.EventChange, Field: "name", Value: "Taro"},
		{Type: live.EventChange, Field: "email", Value: "taro@acme.com"},
		{Type: live.EventChange, Field: "content", Value: "お願いします"},
	} {
		exchange(t, ctx, conn, evt)
	}

	msg := exchange(t, ctx, conn, live.Event{Type: live.EventSubmit})
	assert.Equal(t, live.MessageSubmitted, msg.Type)
	assert.Equal(t, "お問い合わせフォーム - サンプル株式会社", msg.State.Title)
	require.Len(t, sink.Snapshots(), 1)
	assert.Equal(t, form.Snapshot{
		InquiryType: "見積もり依頼",
		Service:     []string{"サービスA"},
		Company:     "Acme",
		Name:        "Taro",
		Email:       "taro@acme.com",
		Content:     "お願いします",
	}, sink.Snapshots()[0])

	// The session starts over after a successful submit.
	msg = exchange(t, ctx, conn, live.Event{Type: live.EventSubmit})
	assert.Equal(t, live.MessageState, msg.Type)
	assert.Equal(t, 6, msg.State.ErrorCount)
	assert.Len(t, sink.Snapshots(), 1)
}

func TestLive_RejectsUnknownEvents(t *testing.T) {
	conn, ctx := dialLive(t, newTestServer(t))

	msg := exchange(t, ctx, conn, live.Event{Type: "paste", Field: "email"})
	assert.Equal(t, live.MessageError, msg.Type)
	assert.NotEmpty(t, msg.Error)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventChange, Field: "phone", Value: "x"})
	assert.Equal(t, live.MessageError, msg.Type)

	msg = exchange(t, ctx, conn, live.Event{Type: live.EventBlur, Field: "company"})
	assert.Equal(t, live.MessageState, msg.Type)
	assert.Equal(t, "御社名は必須です", msg.State.Errors["company"])
}

func TestLive_RejectsForeignOrigin(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+PathLive, &websocket.DialOptions{HTTPHeader: header})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
