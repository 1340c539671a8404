// Package openapi publishes the submission contract: an OpenAPI 3 document
// whose request body schema is the snapshot a sink receives. The schema
// mirrors the validation rules, so external clients can check payloads before
// posting them. kin-openapi types are used directly.
package openapi
