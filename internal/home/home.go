// Package home resolves the distill home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the distill home directory.
	DefaultDirName = ".distill"

	// UseCasesDirName is the subdirectory holding saved use cases.
	UseCasesDirName = "usecases"

	// LogsDirName is the subdirectory for LLM call logs.
	LogsDirName = "logs"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// LLMLogFileName is the JSONL audit log of LLM calls.
	LLMLogFileName = "llm_calls.jsonl"
)

// Dir represents the distill home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.distill).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// UseCasesPath returns the path to the use case store.
func (d *Dir) UseCasesPath() string {
	return filepath.Join(d.path, UseCasesDirName)
}

// LogsPath returns the path to the logs directory.
func (d *Dir) LogsPath() string {
	return filepath.Join(d.path, LogsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// LLMLogPath returns the path to the LLM call audit log.
func (d *Dir) LLMLogPath() string {
	return filepath.Join(d.LogsPath(), LLMLogFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't
// exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.UseCasesPath(), d.LogsPath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}
