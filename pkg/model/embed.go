package model

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

// ContactDefinitionPath is the location of the bundled contact form inside
// DefinitionsFS.
const ContactDefinitionPath = "contact.yaml"

var (
	contactOnce sync.Once
	contactForm FormModel
	contactErr  error
)

// DefinitionsFS exposes the bundled form definitions.
func DefinitionsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		// The embed directive guarantees the subpath exists, so panic is
		// acceptable here.
		panic(err)
	}
	return sub
}

// Contact returns the bundled contact form definition. The embedded file is
// parsed once; callers receive their own copy of the field slice.
func Contact() FormModel {
	contactOnce.Do(func() {
		contactForm, contactErr = LoadFS(DefinitionsFS(), ContactDefinitionPath)
	})
	if contactErr != nil {
		panic(contactErr)
	}
	return contactForm.Clone()
}
