package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	// Responder, when set, overrides ResponseText/ResponseJSON per request.
	Responder func(req *ChatRequest) (string, error)

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Requests returns how many requests the mock has served.
func (c *MockClient) Requests() int64 {
	return c.requestCount.Load()
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
	}

	if c.ShouldFail || (c.FailAfter > 0 && count > int64(c.FailAfter)) {
		result.ErrorType = "mock_failure"
		result.ErrorMessage = "mock client configured to fail"
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("mock client configured to fail")
	}

	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		result.ErrorType = "canceled"
		result.ErrorMessage = ctx.Err().Error()
		result.TotalTime = time.Since(start)
		return result, ctx.Err()
	}

	content := c.ResponseText
	if c.Responder != nil {
		var err error
		content, err = c.Responder(req)
		if err != nil {
			result.ErrorType = "mock_failure"
			result.ErrorMessage = err.Error()
			result.TotalTime = time.Since(start)
			return result, err
		}
	} else if len(c.ResponseJSON) > 0 {
		content = string(c.ResponseJSON)
	}

	result.Content = content
	result.TotalTime = time.Since(start)

	if req.ResponseFormat != nil {
		parsed, err := ParseStructuredJSON(content)
		if err != nil {
			result.ErrorType = "parse_error"
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("mock structured output: %w", err)
		}
		result.ParsedJSON = parsed
	}

	result.Success = true
	return result, nil
}
