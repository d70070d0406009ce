package llmlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docdistill/distill/internal/providers"
)

func TestRecorderWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	rec := NewRecorder(path, nil)

	rec.Record(&providers.ChatResult{
		Content:          "ok",
		Provider:         "mock",
		ModelUsed:        "gpt-4.1",
		PromptTokens:     10,
		CompletionTokens: 5,
		TotalTime:        42 * time.Millisecond,
		Success:          true,
	}, RecordOptions{UseCase: "invoices", Purpose: "extraction", Document: "a.pdf"})

	rec.Record(&providers.ChatResult{
		Provider:     "mock",
		ModelUsed:    "gpt-4.1",
		ErrorMessage: "api error",
	}, RecordOptions{UseCase: "invoices", Purpose: "schema_synthesis"})

	rec.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var calls []Call
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var c Call
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		calls = append(calls, c)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d records, want 2", len(calls))
	}

	first := calls[0]
	if first.Purpose != "extraction" || first.Document != "a.pdf" || !first.Success {
		t.Errorf("first record = %+v", first)
	}
	if first.LatencyMs != 42 || first.InputTokens != 10 {
		t.Errorf("metrics not recorded: %+v", first)
	}
	if first.ID == "" || first.Timestamp.IsZero() {
		t.Errorf("identity not recorded: %+v", first)
	}

	second := calls[1]
	if second.Success || second.Error != "api error" {
		t.Errorf("failed call not recorded faithfully: %+v", second)
	}
}

func TestRecorderNilSafety(t *testing.T) {
	var rec *Recorder
	// Must not panic.
	rec.Record(&providers.ChatResult{}, RecordOptions{})
	rec.Close()
}

func TestFromChatResultNil(t *testing.T) {
	if FromChatResult(nil, RecordOptions{}) != nil {
		t.Error("FromChatResult(nil) must return nil")
	}
}
