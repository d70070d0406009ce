package providers

import (
	"encoding/json"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "plain object",
			content: `{"a": 1}`,
			want:    `{"a":1}`,
		},
		{
			name:    "code fenced",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "surrounding prose",
			content: "Here is the result:\n{\"vendor\": \"Acme\"}\nLet me know if you need more.",
			want:    `{"vendor":"Acme"}`,
		},
		{
			name:    "array",
			content: `[1, 2, 3]`,
			want:    `[1,2,3]`,
		},
		{
			name:    "empty",
			content: "   ",
			wantErr: true,
		},
		{
			name:    "no json at all",
			content: "I could not produce output.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStructuredJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStructuredJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ParseStructuredJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateStructuredJSON(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"vendor": {"type": "string"},
			"total": {"type": "number"}
		},
		"required": ["vendor"]
	}`)

	t.Run("valid record", func(t *testing.T) {
		if err := ValidateStructuredJSON(schema, json.RawMessage(`{"vendor":"Acme","total":12.5}`)); err != nil {
			t.Errorf("ValidateStructuredJSON() = %v, want nil", err)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		if err := ValidateStructuredJSON(schema, json.RawMessage(`{"total":12.5}`)); err == nil {
			t.Error("expected validation error for missing required field")
		}
	})

	t.Run("unexpected property", func(t *testing.T) {
		if err := ValidateStructuredJSON(schema, json.RawMessage(`{"vendor":"Acme","extra":true}`)); err == nil {
			t.Error("expected validation error for additional property")
		}
	})

	t.Run("wrapped schema", func(t *testing.T) {
		wrapped := json.RawMessage(`{"json_schema": {"schema": ` + string(schema) + `}}`)
		if err := ValidateStructuredJSON(wrapped, json.RawMessage(`{"vendor":"Acme"}`)); err != nil {
			t.Errorf("ValidateStructuredJSON(wrapped) = %v, want nil", err)
		}
	})
}
