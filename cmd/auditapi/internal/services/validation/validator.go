package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Payload schema names. Each maps to schemas/<name>.json.
const (
	CompanyCreate          = "company_create"
	RegulatoryUpsert       = "regulatory_upsert"
	IndustrySizeUpsert     = "industry_size_upsert"
	TaxRegistrationReplace = "tax_registration_replace"
	ManufacturingReplace   = "manufacturing_replace"
	EngagementCreate       = "engagement_create"
	EngagementContext      = "engagement_context"
)

// ErrInvalidPayload marks a request body that does not satisfy its schema.
var ErrInvalidPayload = errors.New("invalid payload")

// ErrUnknownSchema is returned when no embedded schema has the requested name.
var ErrUnknownSchema = errors.New("unknown schema")

//go:embed schemas/*.json
var schemaFS embed.FS

// maxMessageLen bounds the library message copied into a validation error.
const maxMessageLen = 200

// Validator checks request payloads against named JSON schemas.
type Validator interface {
	ValidateJSON(name string, raw []byte) error
}

// SchemaValidator implements Validator using santhosh-tekuri/jsonschema/v6.
// Compiled schemas are kept in an LRU cache keyed by schema name.
type SchemaValidator struct {
	schemaCache *lru.Cache[string, *jsonschema.Schema]
}

var _ Validator = (*SchemaValidator)(nil)

// NewSchemaValidator creates a validator with room for cacheSize compiled schemas.
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &SchemaValidator{schemaCache: cache}, nil
}

// ValidateJSON validates raw against the schema called name. A body that is
// not JSON or violates the schema yields ErrInvalidPayload.
func (v *SchemaValidator) ValidateJSON(name string, raw []byte) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidPayload, err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, formatValidationError(err))
	}
	return nil
}

func (v *SchemaValidator) schema(name string) (*jsonschema.Schema, error) {
	if cached, ok := v.schemaCache.Get(name); ok {
		return cached, nil
	}

	compiled, err := compileSchema(name)
	if err != nil {
		return nil, err
	}
	v.schemaCache.Add(name, compiled)
	return compiled, nil
}

// compileSchema loads schemas/<name>.json and compiles it as Draft 7.
func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	url := name + ".json"
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// formatValidationError renders a validation failure with the JSON path of
// the offending value, e.g.
// "validation failed at '$.listed_status': ...".
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	// Report the deepest cause; its location names the offending field.
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	path := "$"
	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := ve.Error()
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "... (truncated)"
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, msg)
}

// CacheSize returns the number of compiled schemas held.
func (v *SchemaValidator) CacheSize() int {
	return v.schemaCache.Len()
}
