// Package llmlog records every LLM API call to a JSONL audit file with its
// purpose, response, and token metrics.
package llmlog

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docdistill/distill/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	UseCase  string `json:"use_case,omitempty"`
	Document string `json:"document,omitempty"`

	// Purpose of the call: schema_synthesis, prompt_synthesis, extraction.
	Purpose string `json:"purpose"`

	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	Response string `json:"response"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	UseCase  string
	Document string
	Purpose  string

	// Pointer to distinguish "not set" from "set to 0".
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult. Returns nil if result
// is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}
	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.TotalTime.Milliseconds()),
		UseCase:      opts.UseCase,
		Document:     opts.Document,
		Purpose:      opts.Purpose,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}
	if !result.Success {
		call.Error = result.ErrorMessage
	}
	return call
}

// Recorder appends Call records to a JSONL file. Record is non-blocking;
// writes are queued and drained by a background goroutine.
type Recorder struct {
	path   string
	logger *slog.Logger

	queue chan *Call
	done  chan struct{}
	once  sync.Once
}

// NewRecorder creates a recorder appending to path. A nil Recorder is a
// valid no-op recorder.
func NewRecorder(path string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		path:   path,
		logger: logger,
		queue:  make(chan *Call, 256),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// Record queues an LLM call for writing. Never blocks; if the queue is
// full the record is dropped with a warning.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil {
		return
	}
	call := FromChatResult(result, opts)
	if call == nil {
		return
	}
	select {
	case r.queue <- call:
	default:
		r.logger.Warn("llm call log queue full, dropping record", "purpose", opts.Purpose)
	}
}

// Close flushes queued records and stops the writer.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		close(r.queue)
		<-r.done
	})
}

func (r *Recorder) drain() {
	defer close(r.done)
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		r.logger.Warn("llm call log unavailable", "path", r.path, "error", err)
		for range r.queue {
		}
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for call := range r.queue {
		if err := enc.Encode(call); err != nil {
			r.logger.Warn("failed to write llm call record", "error", err)
		}
	}
}
