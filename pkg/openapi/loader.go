package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Load parses a published contract and returns its snapshot schema, so a
// client can validate payloads against the document it was given rather than
// the one compiled into this binary.
func Load(ctx context.Context, raw []byte) (*openapi3.T, *openapi3.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, errors.New("openapi: contract payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("openapi: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, nil, fmt.Errorf("openapi: validate contract: %w", err)
	}

	if doc.Components == nil {
		return nil, nil, errors.New("openapi: contract has no components")
	}
	ref := doc.Components.Schemas[SnapshotSchemaName]
	if ref == nil || ref.Value == nil {
		return nil, nil, fmt.Errorf("openapi: contract has no %s schema", SnapshotSchemaName)
	}
	return doc, ref.Value, nil
}
