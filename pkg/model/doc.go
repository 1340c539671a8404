// Package model defines the contact form's field definitions and the Values
// record a Form State carries. Definitions are plain data loaded from JSON or
// YAML; the bundled contact form lives in definitions/contact.yaml.
package model
