// Package fieldspec defines the user-facing field specification that drives
// schema and prompt synthesis.
package fieldspec

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the inferred data kind of a field.
type Kind string

const (
	KindText           Kind = "text"
	KindNumber         Kind = "number"
	KindInteger        Kind = "integer"
	KindBoolean        Kind = "boolean"
	KindTextList       Kind = "list-of-text"
	KindEnum           Kind = "enumerated"
	KindEnumList       Kind = "list-of-enumerated"
)

// Kinds lists every valid kind.
var Kinds = []Kind{
	KindText, KindNumber, KindInteger, KindBoolean,
	KindTextList, KindEnum, KindEnumList,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// IsEnumerated reports whether k restricts values to a category set.
func (k Kind) IsEnumerated() bool {
	return k == KindEnum || k == KindEnumList
}

// FieldSpec describes one field the user wants extracted.
type FieldSpec struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Kind        Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required    bool     `json:"required" yaml:"required"`
}

// UseCase bundles a named extraction configuration.
type UseCase struct {
	Name            string      `json:"name" yaml:"name"`
	Description     string      `json:"description" yaml:"description"`
	Fields          []FieldSpec `json:"fields" yaml:"fields"`
	GenerationModel string      `json:"generation_model" yaml:"generation_model"`
	ExtractionModel string      `json:"extraction_model" yaml:"extraction_model"`
	AzureMode       bool        `json:"azure_mode" yaml:"azure_mode"`
	// SchemaHash pins the persisted schema/prompt pair to this field list.
	SchemaHash string `json:"schema_hash,omitempty" yaml:"schema_hash,omitempty"`
}

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// SnakeCase converts a user-entered field label to a snake_case identifier.
// Spaces and hyphens become underscores; everything is lowercased. Extracted
// JSON keys must match schema field names exactly, so no aliases anywhere.
func SnakeCase(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = nonIdent.ReplaceAllString(s, "")
	s = strings.Trim(s, "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

// Normalize rewrites field names to snake_case and infers missing kinds:
// category-bearing fields become enumerated, everything else defaults to text.
func (u *UseCase) Normalize() {
	for i := range u.Fields {
		f := &u.Fields[i]
		f.Name = SnakeCase(f.Name)
		if f.Kind == "" {
			if len(f.Categories) > 0 {
				f.Kind = KindEnum
			} else {
				f.Kind = KindText
			}
		}
	}
}

// Validate checks the use case against the field invariants. Callers should
// Normalize first.
func (u *UseCase) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("use case name cannot be empty")
	}
	if len(u.Fields) == 0 {
		return fmt.Errorf("use case %q has no fields", u.Name)
	}

	seen := make(map[string]struct{}, len(u.Fields))
	for i, f := range u.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has an empty name", i)
		}
		if strings.TrimSpace(f.Description) == "" {
			return fmt.Errorf("field %q has an empty description", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if !f.Kind.Valid() {
			return fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind)
		}
		if len(f.Categories) > 0 && !f.Kind.IsEnumerated() {
			return fmt.Errorf("field %q declares categories but has kind %q; categories require an enumerated kind", f.Name, f.Kind)
		}
		if f.Kind.IsEnumerated() && len(f.Categories) == 0 {
			return fmt.Errorf("field %q has enumerated kind but no categories", f.Name)
		}
		for j, c := range f.Categories {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("field %q category %d is empty", f.Name, j)
			}
		}
	}
	return nil
}

// Field returns the specification for name, if present.
func (u *UseCase) Field(name string) (FieldSpec, bool) {
	for _, f := range u.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
