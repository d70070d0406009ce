// Package extract runs schema-constrained extraction over parsed documents.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docdistill/distill/internal/document"
	"github.com/docdistill/distill/internal/errdefs"
	"github.com/docdistill/distill/internal/llmlog"
	"github.com/docdistill/distill/internal/prompts"
	"github.com/docdistill/distill/internal/providers"
	"github.com/docdistill/distill/internal/schema"
)

const (
	defaultTimeout     = 2 * time.Minute
	defaultConcurrency = 4
	maxResponseTokens  = 4000
)

// Result is the outcome of extracting one document. Exactly one of Fields
// or Err is meaningful.
type Result struct {
	Source string             `json:"source"`
	Fields json.RawMessage    `json:"fields,omitempty"`
	Flags  []schema.FieldFlag `json:"flags,omitempty"`
	Tokens int                `json:"tokens,omitempty"`
	Err    error              `json:"-"`
}

// Summary aggregates a batch run for reporting.
type Summary struct {
	Total       int            `json:"total"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	TotalTokens int            `json:"total_tokens"`
	Errors      map[string]int `json:"errors,omitempty"` // error kind -> count
}

// Engine extracts structured records from documents using a fixed
// schema/prompt pair. The pair must belong together; NewEngine enforces
// the hash binding so an engine can never mix artifacts.
type Engine struct {
	client      providers.LLMClient
	art         *schema.Artifact
	prompt      *prompts.Artifact
	model       string
	timeout     time.Duration
	concurrency int
	recorder    *llmlog.Recorder
	logger      *slog.Logger
}

// Options tunes engine behavior beyond the required artifacts.
type Options struct {
	Model       string
	Timeout     time.Duration
	Concurrency int
	Recorder    *llmlog.Recorder
	Logger      *slog.Logger
}

// NewEngine creates an extraction engine.
func NewEngine(client providers.LLMClient, art *schema.Artifact, prompt *prompts.Artifact, opts Options) (*Engine, error) {
	if client == nil {
		return nil, errdefs.Configuration("extraction requires an LLM client")
	}
	if art == nil || prompt == nil {
		return nil, errdefs.Configuration("extraction requires both schema and prompt artifacts")
	}
	if art.Hash == "" || prompt.SchemaHash != art.Hash {
		return nil, errdefs.Configuration("prompt artifact does not belong to schema %q", art.Hash)
	}

	e := &Engine{
		client:      client,
		art:         art,
		prompt:      prompt,
		model:       opts.Model,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// ExtractOne extracts a single record from one document. The provider call
// carries the schema as a structured-output constraint and the response is
// validated locally before it is returned.
func (e *Engine) ExtractOne(ctx context.Context, doc *document.Document) *Result {
	res := &Result{Source: doc.Name}

	js, err := e.art.JSONSchema()
	if err != nil {
		res.Err = errdefs.Extraction(err, "failed to render schema for %s", doc.Name)
		return res
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	result, err := e.client.Chat(cctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: e.prompt.Text},
			{Role: "user", Content: fmt.Sprintf("Document: %s\n\n%s", doc.Name, doc.Text)},
		},
		Model:       e.model,
		Temperature: 0,
		MaxTokens:   maxResponseTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: js,
		},
	})
	e.recorder.Record(result, llmlog.RecordOptions{
		UseCase:  e.art.UseCase,
		Document: doc.Name,
		Purpose:  "extraction",
	})
	if result != nil {
		res.Tokens = result.TotalTokens
	}
	if err != nil {
		res.Err = errdefs.Extraction(err, "extraction failed for %s", doc.Name)
		return res
	}
	if len(result.ParsedJSON) == 0 {
		res.Err = errdefs.Extraction(nil, "provider returned no structured output for %s", doc.Name)
		return res
	}

	normalized, flags, err := schema.ValidateRecord(e.art, result.ParsedJSON)
	if err != nil {
		res.Err = errdefs.Extraction(err, "response for %s failed schema validation", doc.Name)
		return res
	}

	e.logger.Debug("extracted record",
		"document", doc.Name,
		"flags", len(flags),
		"duration", time.Since(start).Round(time.Millisecond))

	res.Fields = normalized
	res.Flags = flags
	return res
}

// ExtractBatch extracts all documents concurrently. Each document is an
// independent failure domain: a corrupt or rejected document yields a
// Result with Err set while the rest complete normally. The returned slice
// preserves input order.
func (e *Engine) ExtractBatch(ctx context.Context, docs []*document.Document) ([]*Result, *Summary) {
	results := make([]*Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = e.ExtractOne(gctx, doc)
			return nil // failures stay in the result, never cancel siblings
		})
	}
	g.Wait()

	summary := &Summary{Total: len(docs), Errors: make(map[string]int)}
	for _, r := range results {
		summary.TotalTokens += r.Tokens
		if r.Err != nil {
			summary.Failed++
			summary.Errors[string(errdefs.KindOf(r.Err))]++
			continue
		}
		summary.Succeeded++
	}
	if summary.Failed == 0 {
		summary.Errors = nil
	}

	e.logger.Info("extraction batch complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"tokens", summary.TotalTokens)
	return results, summary
}
