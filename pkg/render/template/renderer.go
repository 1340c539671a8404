package template

import (
	"io"
)

// TemplateRenderer is the seam the HTML renderer depends on: it executes named
// templates and holds values every template can read.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}

// Reloader is implemented by engines that cache parsed templates and can drop
// that cache when the sources change on disk.
type Reloader interface {
	Reload() error
}
