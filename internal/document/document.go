// Package document extracts plain text from PDF, DOCX, and legacy DOC
// files ahead of LLM extraction.
package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/docdistill/distill/internal/errdefs"
)

// Document is the text content of a single source file.
type Document struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Text          string `json:"text"`
	ContentLength int    `json:"content_length"`
	WordCount     int    `json:"word_count"`
}

// SupportedExtensions lists the file extensions Parse understands.
var SupportedExtensions = []string{".pdf", ".docx", ".doc"}

func supported(ext string) bool {
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ParseFile extracts text from a single file. The extension selects the
// parser; the sniffed media type must agree with it. Unsupported or
// misidentified files produce a FormatError.
func ParseFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return nil, errdefs.Format(nil, "unsupported file type %q (supported: %s)",
			ext, strings.Join(SupportedExtensions, ", "))
	}

	if err := sniffCheck(path, ext); err != nil {
		return nil, err
	}

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = pdfText(path)
	case ".docx":
		text, err = docxText(path)
	case ".doc":
		text, err = docText(path)
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errdefs.Format(nil, "%s: no extractable text", filepath.Base(path))
	}

	return &Document{
		Name:          filepath.Base(path),
		Path:          path,
		Text:          text,
		ContentLength: len(text),
		WordCount:     len(strings.Fields(text)),
	}, nil
}

// sniffCheck rejects files whose content type contradicts their extension,
// like a renamed ZIP posing as a PDF.
func sniffCheck(path string, ext string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return errdefs.Format(err, "failed to read %s", filepath.Base(path))
	}
	ok := false
	switch ext {
	case ".pdf":
		ok = mt.Is("application/pdf")
	case ".docx":
		// DOCX is a ZIP container; some producers leave the content type
		// at the generic zip level.
		ok = mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") ||
			mt.Is("application/zip")
	case ".doc":
		ok = mt.Is("application/msword") || mt.Is("application/x-ole-storage")
	}
	if !ok {
		return errdefs.Format(nil, "%s: content type %s does not match extension %s",
			filepath.Base(path), mt.String(), ext)
	}
	return nil
}

// ParseDir parses every supported file directly under dir. Files that fail
// to parse are reported per path; one bad file never blocks the rest.
func ParseDir(dir string, logger *slog.Logger) ([]*Document, map[string]error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	var docs []*Document
	failures := make(map[string]error)
	for _, e := range entries {
		if e.IsDir() || !supported(strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := ParseFile(path)
		if err != nil {
			logger.Warn("failed to parse document", "file", e.Name(), "error", err)
			failures[path] = err
			continue
		}
		logger.Debug("parsed document", "file", e.Name(), "words", doc.WordCount)
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, failures, nil
}
