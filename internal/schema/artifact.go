// Package schema holds the generated data-validation schema and the
// synthesizer that derives it from a field specification via a provider call.
//
// The artifact is a data-driven representation (tagged field descriptors
// interpreted by a generic validator) rather than generated source code.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docdistill/distill/internal/fieldspec"
)

// NotFound is the explicit missing-value convention for text fields: the
// extraction prompt instructs the model to use it instead of fabricating.
const NotFound = "n/a"

// Uncategorized is the sentinel an enumerated field maps to when the model
// returns a value outside the declared category set.
const Uncategorized = "uncategorized"

// Field describes one expected output field.
type Field struct {
	Name        string         `json:"name"`
	Kind        fieldspec.Kind `json:"kind"`
	Enum        []string       `json:"enum,omitempty"`
	Description string         `json:"description"`
	Required    bool           `json:"required"`
}

// Artifact is a generated, reusable schema for one use case. It is never
// mutated in place; changing the field list regenerates it.
type Artifact struct {
	UseCase     string    `json:"use_case"`
	Fields      []Field   `json:"fields"`
	Hash        string    `json:"hash"`
	GeneratedBy string    `json:"generated_by"` // provider/model
	GeneratedAt time.Time `json:"generated_at"`
}

// Field returns the descriptor for name, if present.
func (a *Artifact) Field(name string) (Field, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ComputeHash returns a content hash over the field descriptors. The hash
// binds a prompt artifact to the exact schema it was generated against.
func (a *Artifact) ComputeHash() (string, error) {
	b, err := json.Marshal(a.Fields)
	if err != nil {
		return "", fmt.Errorf("failed to hash schema fields: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes and stores the content hash.
func (a *Artifact) Seal() error {
	h, err := a.ComputeHash()
	if err != nil {
		return err
	}
	a.Hash = h
	return nil
}

// JSONSchema renders the strict schema handed to the provider as an output
// constraint: enumerated fields are restricted to exactly the declared
// category set. Strict structured-output mode requires every property to
// appear in "required", so optional fields are listed there too and carry
// nullable types instead; the model signals not-found with null.
func (a *Artifact) JSONSchema() (json.RawMessage, error) {
	return a.renderJSONSchema(true)
}

// ValidationSchema renders the schema used for local record validation after
// enum normalization. It additionally admits the uncategorized sentinel so a
// normalized record with flagged fields still validates structurally, and
// only genuinely required fields must be present.
func (a *Artifact) ValidationSchema() (json.RawMessage, error) {
	return a.renderJSONSchema(false)
}

func (a *Artifact) renderJSONSchema(strict bool) (json.RawMessage, error) {
	props := make(map[string]any, len(a.Fields))
	var required []string

	for _, f := range a.Fields {
		prop, err := fieldProp(f, !strict)
		if err != nil {
			return nil, err
		}
		props[f.Name] = prop
		if strict || f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render JSON schema: %w", err)
	}
	return b, nil
}

func fieldProp(f Field, allowSentinel bool) (map[string]any, error) {
	var prop map[string]any

	switch f.Kind {
	case fieldspec.KindText:
		prop = map[string]any{"type": "string", "description": f.Description}
	case fieldspec.KindNumber:
		prop = map[string]any{"type": "number", "description": f.Description}
	case fieldspec.KindInteger:
		prop = map[string]any{"type": "integer", "description": f.Description}
	case fieldspec.KindBoolean:
		prop = map[string]any{"type": "boolean", "description": f.Description}
	case fieldspec.KindTextList:
		prop = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": f.Description,
		}
	case fieldspec.KindEnum:
		prop = map[string]any{
			"type":        "string",
			"enum":        enumValues(f, allowSentinel),
			"description": f.Description,
		}
	case fieldspec.KindEnumList:
		prop = map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "string",
				"enum": enumValues(f, allowSentinel),
			},
			"description": f.Description,
		}
	default:
		return nil, fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind)
	}

	if !f.Required {
		// Optional fields use null as the not-found convention.
		switch t := prop["type"].(type) {
		case string:
			prop["type"] = []any{t, "null"}
		}
		if e, ok := prop["enum"].([]any); ok {
			prop["enum"] = append(e, nil)
		}
	}
	return prop, nil
}

func enumValues(f Field, allowSentinel bool) []any {
	vals := make([]any, 0, len(f.Enum)+1)
	for _, v := range f.Enum {
		vals = append(vals, v)
	}
	if allowSentinel {
		vals = append(vals, Uncategorized)
	}
	return vals
}
