// Package prompts synthesizes the natural-language extraction instructions
// that accompany a generated schema.
package prompts

import "time"

// Context parameterizes prompt synthesis with the user's extraction intent.
type Context struct {
	Purpose            string `json:"purpose"`
	DocumentType       string `json:"document_type"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// Artifact is a generated extraction instruction set. SchemaHash pins it to
// the exact schema it was generated against; the configuration store refuses
// to load a schema/prompt pair whose hashes disagree.
type Artifact struct {
	UseCase     string    `json:"use_case"`
	SchemaHash  string    `json:"schema_hash"`
	Context     Context   `json:"context"`
	Text        string    `json:"text"`
	GeneratedBy string    `json:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"`
}
