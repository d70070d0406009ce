package providers

import "strings"

// Family identifies the underlying model family of a model identifier.
type Family string

const (
	FamilyGPT     Family = "gpt"
	FamilyClaude  Family = "claude"
	FamilyUnknown Family = "unknown"
)

// ModelFamily derives the family from a model identifier.
// "gpt-4.1-2025-04-14" -> gpt, "claude-sonnet-4-20250514" -> claude.
func ModelFamily(model string) Family {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.Contains(m, "claude"):
		return FamilyClaude
	case strings.Contains(m, "gpt") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3"):
		return FamilyGPT
	}
	return FamilyUnknown
}
