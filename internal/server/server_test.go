package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	xhtml "golang.org/x/net/html"

	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/testsupport"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:              "127.0.0.1",
		Port:              8080,
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		LiveValidation:    true,
		CSRFCookie:        "contactform_csrf",
	}
}

// captureSink is written from server goroutines, so reads go through
// Snapshots.
type captureSink struct {
	mu        sync.Mutex
	snapshots []form.Snapshot
	err       error
}

func (c *captureSink) Sink() form.Sink {
	return func(_ context.Context, snapshot form.Snapshot) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.snapshots = append(c.snapshots, snapshot)
		return c.err
	}
}

func (c *captureSink) Snapshots() []form.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]form.Snapshot(nil), c.snapshots...)
}

func newTestServer(t *testing.T, options ...Option) *Server {
	t.Helper()
	s, err := New(testConfig(), options...)
	require.NoError(t, err)
	return s
}

// fetchToken loads the page and returns the CSRF cookie issued with it.
func fetchToken(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "contactform_csrf" {
			return cookie
		}
	}
	t.Fatalf("csrf cookie not issued")
	return nil
}

func postForm(t *testing.T, h http.Handler, cookie *http.Cookie, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil && values.Get(csrfField) == "" {
		values.Set(csrfField, cookie.Value)
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func filledForm() url.Values {
	return url.Values{
		"inquiryType": {"見積もり依頼"},
		"service":     {"サービスA"},
		"company":     {"Acme"},
		"name":        {"Taro"},
		"email":       {"taro@acme.com"},
		"content":     {"お願いします"},
	}
}

func pageTitle(t *testing.T, body string) string {
	t.Helper()
	doc := testsupport.ParseHTML(t, body)
	return testsupport.Text(testsupport.MustFind(t, doc, testsupport.ByTag("title"), "title"))
}

func TestPage_RendersShellAndForm(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	body := rec.Body.String()
	assert.Equal(t, "お問い合わせフォーム - サンプル株式会社", pageTitle(t, body))

	doc := testsupport.ParseHTML(t, body)
	formNode := testsupport.MustFind(t, doc, testsupport.ByTag("form"), "form")
	endpoint, _ := testsupport.Attr(formNode, "data-live-endpoint")
	assert.Equal(t, PathLive, endpoint)

	hidden := testsupport.MustFind(t, doc, testsupport.ByAttr("name", csrfField), "csrf input")
	token, _ := testsupport.Attr(hidden, "value")
	assert.Len(t, token, 36)

	assert.Contains(t, body, `href="/assets/contactform.css"`)
	assert.Contains(t, body, `src="/assets/contactform.js"`)
	assert.Contains(t, body, "Sample Inc.")
}

func TestPage_ReusesExistingToken(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "contactform_csrf", Value: "existing-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
	assert.Contains(t, rec.Body.String(), `value="existing-token"`)
}

func TestSubmit_EmptyFormIsRejected(t *testing.T) {
	sink := &captureSink{}
	h := newTestServer(t, WithSink(sink.Sink())).Handler()
	cookie := fetchToken(t, h)

	rec := postForm(t, h, cookie, url.Values{})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, sink.Snapshots())
	body := rec.Body.String()
	assert.Equal(t, "6箇所の入力エラーがあります - お問い合わせフォーム", pageTitle(t, body))
	for _, msg := range []string{
		"お問い合わせ種別を選択してください",
		"検討中のサービスを1つ以上選択してください",
		"御社名は必須です",
		"ご担当者名は必須です",
		"メールアドレスは必須です",
		"お問い合わせ内容は必須です",
	} {
		assert.Contains(t, body, msg)
	}
}

func TestSubmit_ValidFormDeliversAndRedirects(t *testing.T) {
	sink := &captureSink{}
	h := newTestServer(t, WithSink(sink.Sink())).Handler()
	cookie := fetchToken(t, h)

	rec := postForm(t, h, cookie, filledForm())

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, sink.Snapshots(), 1)
	assert.Equal(t, form.Snapshot{
		InquiryType: "見積もり依頼",
		Service:     []string{"サービスA"},
		Company:     "Acme",
		Name:        "Taro",
		Email:       "taro@acme.com",
		Content:     "お願いします",
	}, sink.Snapshots()[0])
}

func TestSubmit_MalformedEmailKeepsValues(t *testing.T) {
	sink := &captureSink{}
	h := newTestServer(t, WithSink(sink.Sink())).Handler()
	cookie := fetchToken(t, h)

	values := filledForm()
	values.Set("email", "not-an-email")
	rec := postForm(t, h, cookie, values)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, sink.Snapshots())
	body := rec.Body.String()
	assert.Equal(t, "1箇所の入力エラーがあります - お問い合わせフォーム", pageTitle(t, body))
	assert.Contains(t, body, "メールアドレスの形式に誤りがあります")

	doc := testsupport.ParseHTML(t, body)
	email := testsupport.MustFind(t, doc, func(n *xhtml.Node) bool {
		name, _ := testsupport.Attr(n, "name")
		return n.Data == "input" && name == "email"
	}, "email input")
	value, _ := testsupport.Attr(email, "value")
	assert.Equal(t, "not-an-email", value)
}

func TestSubmit_SinkFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := &captureSink{err: errors.New("downstream unavailable")}
	h := newTestServer(t, WithSink(sink.Sink()), WithLogger(zap.New(core))).Handler()
	cookie := fetchToken(t, h)

	rec := postForm(t, h, cookie, filledForm())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Acme"`)
	assert.Equal(t, 1, logs.FilterMessage("submission sink failed").Len())
}

func TestSubmit_CSRF(t *testing.T) {
	sink := &captureSink{}
	h := newTestServer(t, WithSink(sink.Sink())).Handler()
	cookie := fetchToken(t, h)

	t.Run("missing cookie", func(t *testing.T) {
		values := filledForm()
		values.Set(csrfField, cookie.Value)
		rec := postForm(t, h, nil, values)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("mismatched token", func(t *testing.T) {
		values := filledForm()
		values.Set(csrfField, "forged")
		rec := postForm(t, h, cookie, values)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	assert.Empty(t, sink.Snapshots())
}

func TestOpenAPIAndHealth(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathOpenAPI, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"ContactSnapshot"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAssets(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/contactform.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WebSocket")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLiveDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.LiveValidation = false
	s, err := New(cfg)
	require.NoError(t, err)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathLive, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), "data-live-endpoint")
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := newTestServer(t, WithLogger(zap.New(core))).Handler()

	const id = "0b8f2c55-9d3e-4b7a-8a51-0e4a2f3c9d10"
	req := httptest.NewRequest(http.MethodGet, PathHealth, nil)
	req.Header.Set(HeaderRequestID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(HeaderRequestID))
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, PathHealth, fields["path"])

	req = httptest.NewRequest(http.MethodGet, PathHealth, nil)
	req.Header.Set(HeaderRequestID, "not a uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(HeaderRequestID))
}

func TestServe_ShutsDownWithContext(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + PathHealth)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
