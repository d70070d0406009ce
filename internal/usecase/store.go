// Package usecase persists extraction configurations: one directory per use
// case holding the configuration record, the generated schema, and the
// generated prompt.
package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/docdistill/distill/internal/fieldspec"
	"github.com/docdistill/distill/internal/prompts"
	"github.com/docdistill/distill/internal/schema"
)

const (
	configFileName = "config.json"
	schemaFileName = "schema.json"
	promptFileName = "prompt.json"
)

// ErrNotFound is returned when a use case does not exist.
var ErrNotFound = errors.New("use case not found")

// ErrInconsistent is returned when a stored schema/prompt pair does not
// belong together.
var ErrInconsistent = errors.New("schema and prompt artifacts are inconsistent")

// Store is a directory-per-use-case file store.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: dir, logger: logger}
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// Slug converts a use case name to its directory name.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "._-")
	return s
}

// Save writes the use case and both artifacts as one atomic set. The three
// files are staged in a temporary directory which is then renamed into
// place, so a concurrent reader never observes a partially written set.
// GenerationErrors upstream mean Save is never reached with partial data;
// here the prompt must have been generated against exactly this schema.
func (s *Store) Save(uc *fieldspec.UseCase, art *schema.Artifact, prompt *prompts.Artifact) error {
	if err := uc.Validate(); err != nil {
		return fmt.Errorf("invalid use case: %w", err)
	}
	if art == nil || prompt == nil {
		return fmt.Errorf("both schema and prompt artifacts are required")
	}
	if art.Hash == "" || prompt.SchemaHash != art.Hash {
		return fmt.Errorf("%w: prompt was generated against schema %q, saving schema %q",
			ErrInconsistent, prompt.SchemaHash, art.Hash)
	}

	slug := Slug(uc.Name)
	if slug == "" {
		return fmt.Errorf("use case name %q produces an empty directory name", uc.Name)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create store root: %w", err)
	}

	uc.SchemaHash = art.Hash

	staging := filepath.Join(s.root, ".staging-"+slug+"-"+uuid.New().String()[:8])
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	files := map[string]any{
		configFileName: uc,
		schemaFileName: art,
		promptFileName: prompt,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(staging, name), v); err != nil {
			return err
		}
	}

	target := filepath.Join(s.root, slug)
	if _, err := os.Stat(target); err == nil {
		// Replace: move the old set aside, swap in the new one.
		old := target + ".old-" + uuid.New().String()[:8]
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("failed to displace existing use case: %w", err)
		}
		if err := os.Rename(staging, target); err != nil {
			// Try to restore the old set before reporting.
			if rbErr := os.Rename(old, target); rbErr != nil {
				s.logger.Error("failed to restore use case after swap failure",
					"use_case", uc.Name, "error", rbErr)
			}
			return fmt.Errorf("failed to install use case: %w", err)
		}
		os.RemoveAll(old)
	} else if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("failed to install use case: %w", err)
	}

	s.logger.Info("saved use case", "name", uc.Name, "dir", target, "schema_hash", art.Hash[:12])
	return nil
}

// Load returns the use case and both artifacts, or ErrNotFound. All three
// files must be present and mutually referential.
func (s *Store) Load(name string) (*fieldspec.UseCase, *schema.Artifact, *prompts.Artifact, error) {
	dir := filepath.Join(s.root, Slug(name))
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var uc fieldspec.UseCase
	var art schema.Artifact
	var prompt prompts.Artifact

	if err := readJSON(filepath.Join(dir, configFileName), &uc); err != nil {
		return nil, nil, nil, fmt.Errorf("use case %q: %w", name, err)
	}
	if err := readJSON(filepath.Join(dir, schemaFileName), &art); err != nil {
		return nil, nil, nil, fmt.Errorf("use case %q: %w", name, err)
	}
	if err := readJSON(filepath.Join(dir, promptFileName), &prompt); err != nil {
		return nil, nil, nil, fmt.Errorf("use case %q: %w", name, err)
	}

	if art.Hash == "" || prompt.SchemaHash != art.Hash || uc.SchemaHash != art.Hash {
		return nil, nil, nil, fmt.Errorf("use case %q: %w", name, ErrInconsistent)
	}

	return &uc, &art, &prompt, nil
}

// List yields the known use case names in sorted order. The sequence is
// lazy, restartable, and finite; each restart re-reads the directory.
func (s *Store) List() iter.Seq[string] {
	return func(yield func(string) bool) {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			var uc fieldspec.UseCase
			if err := readJSON(filepath.Join(s.root, e.Name(), configFileName), &uc); err != nil {
				s.logger.Warn("skipping unreadable use case directory", "dir", e.Name(), "error", err)
				continue
			}
			names = append(names, uc.Name)
		}
		sort.Strings(names)
		for _, n := range names {
			if !yield(n) {
				return
			}
		}
	}
}

// Delete removes a use case and its artifacts.
func (s *Store) Delete(name string) error {
	dir := filepath.Join(s.root, Slug(name))
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete use case %q: %w", name, err)
	}
	s.logger.Info("deleted use case", "name", name)
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("missing or unreadable %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("corrupt %s: %w", filepath.Base(path), err)
	}
	return nil
}
