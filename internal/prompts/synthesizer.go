package prompts

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
	"github.com/docdistill/distill/internal/schema"
)

// Synthesizer produces extraction prompt artifacts. One provider call drafts
// per-field guidance; the final prompt is rendered around it so the contract
// sections (not-found convention, fabrication ban, enum restriction) are
// always present regardless of what the model drafted.
type Synthesizer struct {
	client   providers.LLMClient
	model    string
	logger   *slog.Logger
	recorder *llmlog.Recorder
}

// NewSynthesizer creates a prompt synthesizer backed by client/model.
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

// Synthesize generates the prompt artifact for a use case against the given
// schema artifact. Provider failure surfaces as a GenerationError and no
// artifact is produced.
func (s *Synthesizer) Synthesize(ctx context.Context, uc *fieldspec.UseCase, art *schema.Artifact, pctx Context) (*Artifact, error) {
	if art == nil || art.Hash == "" {
		return nil, errdefs.Generation(nil, "prompt synthesis requires a sealed schema artifact")
	}

	s.logger.Info("synthesizing prompt",
		"use_case", uc.Name,
		"provider", s.client.Name(),
		"model", s.model)

	guidance, generatedBy, err := s.draftGuidance(ctx, uc, art, pctx)
	if err != nil {
		return nil, errdefs.Generation(err, "prompt generation failed for use case %q", uc.Name)
	}

	schemaJSON, err := art.JSONSchema()
	if err != nil {
		return nil, errdefs.Generation(err, "failed to render schema for prompt")
	}

	text, err := render(uc.Name, pctx, string(schemaJSON), guidance)
	if err != nil {
		return nil, errdefs.Generation(err, "failed to render prompt for use case %q", uc.Name)
	}

	return &Artifact{
		UseCase:     uc.Name,
		SchemaHash:  art.Hash,
		Context:     pctx,
		Text:        text,
		GeneratedBy: generatedBy,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *Synthesizer) draftGuidance(ctx context.Context, uc *fieldspec.UseCase, art *schema.Artifact, pctx Context) (string, string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "USE CASE: %s\n", uc.Name)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n", uc.Description)
	if p := strings.TrimSpace(pctx.Purpose); p != "" {
		fmt.Fprintf(&b, "PURPOSE: %s\n", p)
	}
	if d := strings.TrimSpace(pctx.DocumentType); d != "" {
		fmt.Fprintf(&b, "DOCUMENT TYPE: %s\n", d)
	}
	b.WriteString("\nSchema fields:\n")
	fieldsJSON, err := json.MarshalIndent(art.Fields, "", "  ")
	if err != nil {
		return "", "", err
	}
	b.Write(fieldsJSON)
	b.WriteString("\n\nWrite one short extraction instruction per field: where in such documents the value typically appears, ")
	b.WriteString("what to watch out for, and how to tell similar values apart. ")
	b.WriteString("For enumerated fields, remind the extractor to choose only from the allowed values. ")
	b.WriteString("Output plain text, one line per field, formatted as '- field_name: instruction'. No preamble.")

	res, err := s.client.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: "You write precise, grounded data-extraction instructions. You never encourage guessing."},
			{Role: "user", Content: b.String()},
		},
		Model:       s.model,
		Temperature: 0,
		MaxTokens:   2000,
	})
	s.recorder.Record(res, llmlog.RecordOptions{UseCase: uc.Name, Purpose: "prompt_synthesis"})
	if err != nil {
		return "", "", err
	}

	guidance := strings.TrimSpace(res.Content)
	if guidance == "" {
		return "", "", fmt.Errorf("provider returned empty guidance")
	}
	return guidance, fmt.Sprintf("%s/%s", res.Provider, res.ModelUsed), nil
}
