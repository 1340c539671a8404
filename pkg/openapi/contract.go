package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

const (
	// SnapshotSchemaName is the component name of the snapshot schema.
	SnapshotSchemaName = "ContactSnapshot"
	// SubmitPath is the path the contract advertises for submissions.
	SubmitPath = "/contact"
	// SubmitOperationID identifies the submit operation.
	SubmitOperationID = "submitContact"
	// Version is the contract version reported in the info block.
	Version = "1.0.0"
)

// SnapshotSchema builds the JSON schema for a snapshot of form. Radio fields
// become string enums, checkbox fields arrays of enum items, required text
// fields gain minLength 1 and email fields the address pattern.
func SnapshotSchema(form model.FormModel) (*openapi3.Schema, error) {
	if len(form.Fields) == 0 {
		return nil, errors.New("openapi: form defines no fields")
	}

	schema := openapi3.NewObjectSchema()
	schema.Title = SnapshotSchemaName
	noExtra := false
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: &noExtra}

	for _, field := range form.Fields {
		property, err := fieldSchema(field)
		if err != nil {
			return nil, err
		}
		schema.WithProperty(field.Name, property)
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema, nil
}

func fieldSchema(field model.Field) (*openapi3.Schema, error) {
	var property *openapi3.Schema
	switch field.Control {
	case model.ControlRadio:
		property = openapi3.NewStringSchema().WithEnum(enumValues(field)...)
	case model.ControlCheckbox:
		items := openapi3.NewStringSchema().WithEnum(enumValues(field)...)
		property = openapi3.NewArraySchema().WithItems(items)
		property.UniqueItems = true
		if field.Required {
			property.WithMinItems(1)
		}
	case model.ControlText, model.ControlTextarea:
		property = openapi3.NewStringSchema()
		if field.Required {
			property.WithMinLength(1)
		}
	case model.ControlEmail:
		property = openapi3.NewStringSchema().WithPattern(validation.EmailPattern())
		if field.Required {
			property.WithMinLength(1)
		}
	default:
		return nil, fmt.Errorf("openapi: field %q: unsupported control %q", field.Name, field.Control)
	}
	property.Title = field.Label
	property.Description = field.Placeholder
	return property, nil
}

func enumValues(field model.Field) []any {
	out := make([]any, 0, len(field.Options))
	for _, option := range field.Options {
		out = append(out, option.Value)
	}
	return out
}

// Document builds the full contract for form and validates it.
func Document(ctx context.Context, form model.FormModel) (*openapi3.T, error) {
	snapshot, err := SnapshotSchema(form)
	if err != nil {
		return nil, err
	}

	ref := "#/components/schemas/" + SnapshotSchemaName
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithDescription(form.Description).
		WithJSONSchemaRef(openapi3.NewSchemaRef(ref, snapshot))

	operation := openapi3.NewOperation()
	operation.OperationID = SubmitOperationID
	operation.Summary = form.Submit.Label
	operation.Description = form.Submit.Title
	operation.RequestBody = &openapi3.RequestBodyRef{Value: body}
	operation.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Snapshot accepted by the sink"),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Validation failed; messages keyed by field").
				WithJSONSchema(errorsSchema()),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       form.Title,
			Description: form.Description,
			Version:     Version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(SubmitPath, &openapi3.PathItem{Post: operation})),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				SnapshotSchemaName: openapi3.NewSchemaRef("", snapshot),
			},
		},
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate contract: %w", err)
	}
	return doc, nil
}

func errorsSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.WithProperty("errorCount", openapi3.NewIntegerSchema())
	schema.WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))
	return schema
}

// MarshalDocument renders the contract as indented JSON.
func MarshalDocument(ctx context.Context, form model.FormModel) ([]byte, error) {
	doc, err := Document(ctx, form)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal contract: %w", err)
	}
	return payload, nil
}

// ValidateSnapshot checks snapshot against schema.
func ValidateSnapshot(schema *openapi3.Schema, snapshot model.Values) error {
	if schema == nil {
		return errors.New("openapi: schema is nil")
	}
	value, err := toJSONValue(snapshot.Clone())
	if err != nil {
		return fmt.Errorf("openapi: encode snapshot: %w", err)
	}
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("openapi: snapshot does not match contract: %w", err)
	}
	return nil
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
