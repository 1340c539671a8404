// Package template defines the renderer-agnostic template contract used by the
// HTML renderer. The gotemplate subpackage provides the pongo2 implementation.
package template
