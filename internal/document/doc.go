package document

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"

	"github.com/docdistill/distill/internal/errdefs"
)

// minRunLen filters out the stray printable bytes that litter the binary
// sections of a WordDocument stream.
const minRunLen = 4

// docText extracts text from a legacy binary .doc file. The compound file
// is opened with mscfb and the WordDocument stream is scanned for printable
// runs in both its single-byte and UTF-16 regions. Formatting and field
// codes are discarded.
func docText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errdefs.Format(err, "failed to open %s", filepath.Base(path))
	}
	defer f.Close()

	cfb, err := mscfb.New(f)
	if err != nil {
		return "", errdefs.Format(err, "%s is not a readable DOC file", filepath.Base(path))
	}

	var raw []byte
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		if entry.Name != "WordDocument" {
			continue
		}
		raw, err = io.ReadAll(entry)
		if err != nil {
			return "", errdefs.Format(err, "failed to read document stream of %s", filepath.Base(path))
		}
		break
	}
	if raw == nil {
		return "", errdefs.Format(nil, "%s has no WordDocument stream", filepath.Base(path))
	}

	text := printableRuns(raw)
	if strings.TrimSpace(text) == "" {
		return "", errdefs.Format(nil, "%s: no extractable text", filepath.Base(path))
	}
	return text, nil
}

// printableRuns pulls printable character runs out of a WordDocument
// stream, trying the UTF-16 little-endian interpretation first and the
// single-byte one where that fails.
func printableRuns(raw []byte) string {
	var sb strings.Builder

	flush := func(run []rune) {
		if len(run) >= minRunLen {
			sb.WriteString(string(run))
			sb.WriteByte('\n')
		}
	}

	// UTF-16LE pass: runs of code units whose high byte is zero or that
	// decode to printable BMP characters.
	var run []rune
	for i := 0; i+1 < len(raw); i += 2 {
		u := uint16(raw[i]) | uint16(raw[i+1])<<8
		r := utf16.Decode([]uint16{u})[0]
		if printableDocRune(r) {
			run = append(run, r)
			continue
		}
		if r == '\r' || r == 0x0007 { // paragraph mark, cell mark
			run = append(run, '\n')
			continue
		}
		flush(run)
		run = run[:0]
	}
	flush(run)

	if sb.Len() >= minRunLen*4 {
		return sb.String()
	}

	// Single-byte fallback for pre-Unicode documents.
	sb.Reset()
	run = run[:0]
	for _, b := range raw {
		r := rune(b)
		if printableDocRune(r) {
			run = append(run, r)
			continue
		}
		if r == '\r' {
			run = append(run, '\n')
			continue
		}
		flush(run)
		run = run[:0]
	}
	flush(run)
	return sb.String()
}

func printableDocRune(r rune) bool {
	if r == ' ' || r == '\t' {
		return true
	}
	return r > 0x20 && r < 0xFFFD && unicode.IsPrint(r)
}
