package contactform_test

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contactform "github.com/goliatone/go-contactform"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
)

func TestAssetsFSContainsRuntime(t *testing.T) {
	data, err := fs.ReadFile(contactform.AssetsFS(), "contactform.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-contactform") {
		t.Fatalf("runtime script should bind to the form marker attribute")
	}
	if _, err := fs.ReadFile(contactform.AssetsFS(), "contactform.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
}

func TestTemplatesContainsForm(t *testing.T) {
	if _, err := fs.Stat(contactform.Templates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := contactform.GenerateHTML(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"<title>お問い合わせフォーム - サンプル株式会社</title>",
		`href="/assets/contactform.css"`,
		`src="/assets/contactform.js"`,
		"<form",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestGenerateHTML_Transformer(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformer([]byte("title: Contact\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	out, err := contactform.GenerateHTML(context.Background(), orchestrator.WithTransformer(preset))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "<title>Contact - サンプル株式会社</title>") {
		t.Fatalf("preset title not applied")
	}
}

func TestHandler(t *testing.T) {
	handler, err := contactform.Handler(nil, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `data-live-endpoint="/ws"`) {
		t.Fatalf("default handler should enable live validation")
	}
}
