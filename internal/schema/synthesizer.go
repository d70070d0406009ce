package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docdistill/distill/internal/errdefs"
	"github.com/docdistill/distill/internal/fieldspec"
	"github.com/docdistill/distill/internal/llmlog"
	"github.com/docdistill/distill/internal/providers"
)

// metaSchema constrains the synthesis response: the model describes the
// schema as data, and the synthesizer interprets it. Strict structured-output
// mode needs every property listed as required, so optional ones are
// nullable instead.
const metaSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["fields"],
	"properties": {
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["name", "kind", "enum", "description", "required"],
				"properties": {
					"name": {"type": "string"},
					"kind": {"type": "string", "enum": ["text", "number", "integer", "boolean", "list-of-text", "enumerated", "list-of-enumerated"]},
					"enum": {"type": ["array", "null"], "items": {"type": "string"}},
					"description": {"type": "string"},
					"required": {"type": "boolean"}
				}
			}
		}
	}
}`

// Synthesizer turns a use case's field specifications into a schema Artifact
// through a provider call.
type Synthesizer struct {
	client   providers.LLMClient
	model    string
	logger   *slog.Logger
	recorder *llmlog.Recorder
}

// NewSynthesizer creates a schema synthesizer backed by client/model.
func NewSynthesizer(client providers.LLMClient, model string, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{client: client, model: model, logger: logger}
}

// SetRecorder enables audit logging of synthesis calls.
func (s *Synthesizer) SetRecorder(r *llmlog.Recorder) {
	s.recorder = r
}

// Synthesize generates a schema Artifact for the use case. The provider
// infers kinds and refines descriptions; category-bearing fields are forced
// to enumerated kinds restricted to exactly the declared set, overriding
// whatever the model inferred. On provider failure or unparseable output the
// error is surfaced and no artifact is produced.
func (s *Synthesizer) Synthesize(ctx context.Context, uc *fieldspec.UseCase) (*Artifact, error) {
	if err := uc.Validate(); err != nil {
		return nil, errdefs.Generation(err, "invalid field specification")
	}

	prompt, err := s.buildPrompt(uc)
	if err != nil {
		return nil, errdefs.Generation(err, "failed to build synthesis prompt")
	}

	s.logger.Info("synthesizing schema",
		"use_case", uc.Name,
		"fields", len(uc.Fields),
		"provider", s.client.Name(),
		"model", s.model)

	res, err := s.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: "You are a data modeling assistant. Given field specifications, emit a precise extraction schema as JSON. Never invent fields."},
			{Role: "user", Content: prompt},
		},
		Model:       s.model,
		Temperature: 0,
		MaxTokens:   4000,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: json.RawMessage(metaSchema),
		},
	})
	s.recorder.Record(res, llmlog.RecordOptions{UseCase: uc.Name, Purpose: "schema_synthesis"})
	if err != nil {
		return nil, errdefs.Generation(err, "schema generation failed for use case %q", uc.Name)
	}

	artifact, err := s.parseResponse(uc, res.ParsedJSON)
	if err != nil {
		return nil, errdefs.Generation(err, "schema generation produced unusable output for use case %q", uc.Name)
	}

	artifact.GeneratedBy = fmt.Sprintf("%s/%s", res.Provider, res.ModelUsed)
	artifact.GeneratedAt = time.Now().UTC()
	if err := artifact.Seal(); err != nil {
		return nil, errdefs.Generation(err, "failed to seal schema artifact")
	}

	s.logger.Info("schema synthesized",
		"use_case", uc.Name,
		"fields", len(artifact.Fields),
		"hash", artifact.Hash[:12])
	return artifact, nil
}

func (s *Synthesizer) buildPrompt(uc *fieldspec.UseCase) (string, error) {
	specJSON, err := json.MarshalIndent(uc.Fields, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "USE CASE: %s\n", uc.Name)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n\n", uc.Description)
	b.WriteString("Use the above context to understand the domain when inferring field kinds.\n\n")
	b.WriteString("Field specifications:\n")
	b.Write(specJSON)
	b.WriteString("\n\nFor every specified field, emit one schema field with:\n")
	b.WriteString("- name: the field name exactly as given (snake_case, no aliases)\n")
	b.WriteString("- kind: the best-fitting data kind for the description\n")
	b.WriteString("- enum: the allowed values, copied verbatim for fields that declare categories; null otherwise\n")
	b.WriteString("- description: the field description exactly as provided; do not rephrase or optimize it\n")
	b.WriteString("- required: whether the field was marked required\n\n")
	b.WriteString("Emit every specified field exactly once and nothing else.")
	return b.String(), nil
}

// parseResponse interprets the model's schema description and applies the
// category override: declared categories always win over inferred kinds.
func (s *Synthesizer) parseResponse(uc *fieldspec.UseCase, raw json.RawMessage) (*Artifact, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var resp struct {
		Fields []Field `json:"fields"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unparseable schema response: %w", err)
	}
	if len(resp.Fields) == 0 {
		return nil, fmt.Errorf("schema response contains no fields")
	}

	byName := make(map[string]Field, len(resp.Fields))
	for _, f := range resp.Fields {
		byName[fieldspec.SnakeCase(f.Name)] = f
	}

	artifact := &Artifact{UseCase: uc.Name, Fields: make([]Field, 0, len(uc.Fields))}
	for _, spec := range uc.Fields {
		got, ok := byName[spec.Name]
		if !ok {
			return nil, fmt.Errorf("schema response is missing field %q", spec.Name)
		}
		if !got.Kind.Valid() {
			return nil, fmt.Errorf("schema response gave field %q unknown kind %q", spec.Name, got.Kind)
		}

		field := Field{
			Name:        spec.Name,
			Kind:        got.Kind,
			Description: got.Description,
			Required:    spec.Required,
		}
		if field.Description == "" {
			field.Description = spec.Description
		}

		// Category override: the declared set wins, case-sensitive, exactly.
		if len(spec.Categories) > 0 {
			if got.Kind == fieldspec.KindEnumList || spec.Kind == fieldspec.KindEnumList {
				field.Kind = fieldspec.KindEnumList
			} else {
				field.Kind = fieldspec.KindEnum
			}
			field.Enum = append([]string(nil), spec.Categories...)
		} else {
			if field.Kind.IsEnumerated() {
				// No declared categories means no enumerated kind.
				field.Kind = fieldspec.KindText
			}
			field.Enum = nil
		}

		artifact.Fields = append(artifact.Fields, field)
	}

	return artifact, nil
}
