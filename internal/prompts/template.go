package prompts

import (
	"fmt"
	"strings"

	"github.com/tyler-sommer/stick"
)

// extractionTemplate is the skeleton of every extraction prompt. The
// synthesized per-field guidance and the schema are rendered into it; the
// rules block carries the non-negotiable contract: the explicit not-found
// convention, the fabrication ban, and the enumerated-value restriction.
const extractionTemplate = `TASK: {{ use_case }}

EXTRACTION TASK:
{{ purpose }}
{% if document_type %}
Document type: {{ document_type }}.
{% endif %}
TARGET SCHEMA (JSON Schema):
{{ schema_json }}

FIELD GUIDANCE:
{{ guidance }}

CRITICAL EXTRACTION RULES:
1. Extract information ONLY from the provided text.
2. Never fabricate, infer, or guess any information.
3. If a field's value is not explicitly stated in the text, use "n/a" for text
   fields and null for optional fields. Do not invent a value.
4. Enumerated fields must contain EXACTLY one of their allowed values, spelled
   exactly as listed in the schema. Never output a value outside the list.
5. Maintain exact values, dates, and numerical figures as written.
6. For list fields, extract all relevant items and remove duplicates.
{% if custom_instructions %}
CUSTOM/ADDITIONAL EXTRACTION INSTRUCTIONS:
{{ custom_instructions }}
{% endif %}
OUTPUT FORMAT:
Return ONLY a JSON object matching the target schema. All field names are
snake_case and must match the schema exactly. No markdown, no commentary.`

// render fills the extraction template.
func render(useCase string, ctx Context, schemaJSON, guidance string) (string, error) {
	purpose := strings.TrimSpace(ctx.Purpose)
	if purpose == "" {
		purpose = "Extract structured information from documents."
	}

	env := stick.New(nil)
	var out strings.Builder
	err := env.Execute(extractionTemplate, &out, map[string]stick.Value{
		"use_case":            useCase,
		"purpose":             purpose,
		"document_type":       strings.TrimSpace(ctx.DocumentType),
		"custom_instructions": strings.TrimSpace(ctx.CustomInstructions),
		"schema_json":         schemaJSON,
		"guidance":            guidance,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render extraction prompt: %w", err)
	}
	return out.String(), nil
}
