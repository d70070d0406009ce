package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docdistill/distill/internal/providers"
)

// FieldFlag records a per-field adjustment made during normalization, so a
// batch summary can report it instead of silently rewriting values.
type FieldFlag struct {
	Field string `json:"field"`
	Raw   string `json:"raw"`
	Note  string `json:"note"` // "normalized-case" or "uncategorized"
}

// ValidateRecord normalizes enumerated fields and validates the record
// against the artifact's schema.
//
// Enumerated policy: a value matching a declared category case-insensitively
// is normalized to the declared spelling; a value outside the set maps to the
// Uncategorized sentinel and is flagged. Raw unmatched strings never pass
// through silently. A record that still fails validation after normalization
// is rejected; no default values are substituted.
func ValidateRecord(a *Artifact, raw json.RawMessage) (json.RawMessage, []FieldFlag, error) {
	normalized, flags, err := normalizeEnums(a, raw)
	if err != nil {
		return nil, nil, err
	}

	vs, err := a.ValidationSchema()
	if err != nil {
		return nil, nil, err
	}
	if err := providers.ValidateStructuredJSON(vs, normalized); err != nil {
		return nil, flags, err
	}
	return normalized, flags, nil
}

func normalizeEnums(a *Artifact, raw json.RawMessage) (json.RawMessage, []FieldFlag, error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, nil, fmt.Errorf("record is not a JSON object: %w", err)
	}

	var flags []FieldFlag
	for _, f := range a.Fields {
		if !f.Kind.IsEnumerated() {
			continue
		}
		v, present := record[f.Name]
		if !present || v == nil {
			continue
		}

		switch val := v.(type) {
		case string:
			norm, flag := normalizeEnumValue(f, val)
			record[f.Name] = norm
			if flag != nil {
				flags = append(flags, *flag)
			}
		case []any:
			out := make([]any, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					out = append(out, item)
					continue
				}
				norm, flag := normalizeEnumValue(f, s)
				if flag != nil {
					flags = append(flags, *flag)
				}
				// Not-found markers are dropped from lists rather than
				// serialized as null elements.
				if norm != nil {
					out = append(out, norm)
				}
			}
			record[f.Name] = out
		}
	}

	out, err := json.Marshal(record)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize normalized record: %w", err)
	}
	return out, flags, nil
}

// normalizeEnumValue returns the canonical value for raw. Optional fields
// with a not-found marker normalize to null.
func normalizeEnumValue(f Field, raw string) (any, *FieldFlag) {
	trimmed := strings.TrimSpace(raw)

	for _, c := range f.Enum {
		if trimmed == c {
			return c, nil
		}
	}
	for _, c := range f.Enum {
		if strings.EqualFold(trimmed, c) {
			return c, &FieldFlag{Field: f.Name, Raw: raw, Note: "normalized-case"}
		}
	}
	if !f.Required && (trimmed == "" || strings.EqualFold(trimmed, NotFound)) {
		return nil, nil
	}
	return Uncategorized, &FieldFlag{Field: f.Name, Raw: raw, Note: "uncategorized"}
}
