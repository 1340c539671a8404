package shell

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contactform/pkg/render"
)

const (
	// SiteName is appended to every document title.
	SiteName = "サンプル株式会社"
	// FooterText is the static footer line.
	FooterText = "Sample Inc."
	// HomePath is where the site name in the header links to.
	HomePath = "/"
)

// Asset keys resolved through theme.RendererConfig.AssetURL.
const (
	AssetStylesheet = "contactform.stylesheet"
	AssetScript     = "contactform.script"
)

// Props configure one rendered page.
type Props struct {
	// Title is the page title without the site name.
	Title       string
	Description string
	// TitleOverride replaces the composed document title when set, for
	// example with the form error count.
	TitleOverride string
	Lang          string
	Stylesheets   []string
	Scripts       []string
	Theme         *theme.RendererConfig
}

// DocumentTitle composes "{title} - {site}" or the bare site name when title
// is blank.
func DocumentTitle(title, site string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return site
	}
	return title + " - " + site
}

// PageTitle returns the title for a form page: the error title while
// errorCount fields are invalid, otherwise the regular document title.
func PageTitle(title string, errorCount int) string {
	if override := render.ErrorTitle(errorCount, title); override != "" {
		return override
	}
	return DocumentTitle(title, SiteName)
}

func (p Props) documentTitle() string {
	if override := strings.TrimSpace(p.TitleOverride); override != "" {
		return override
	}
	return DocumentTitle(p.Title, SiteName)
}

func (p Props) description() string {
	return strings.TrimSpace(p.Description)
}

func (p Props) lang() string {
	if lang := strings.TrimSpace(p.Lang); lang != "" {
		return lang
	}
	return "ja"
}

func (p Props) stylesheets() []string {
	return appendThemeAsset(p.Stylesheets, p.Theme, AssetStylesheet)
}

func (p Props) scripts() []string {
	return appendThemeAsset(p.Scripts, p.Theme, AssetScript)
}

func appendThemeAsset(base []string, cfg *theme.RendererConfig, key string) []string {
	out := make([]string, 0, len(base)+1)
	for _, url := range base {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if cfg == nil || cfg.AssetURL == nil {
		return out
	}
	if url := strings.TrimSpace(cfg.AssetURL(key)); url != "" {
		out = append(out, url)
	}
	return out
}
