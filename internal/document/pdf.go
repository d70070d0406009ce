package document

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdf "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docdistill/distill/internal/errdefs"
)

// pdfText pulls the text-showing operands out of every page content stream.
// Fonts with custom encodings are not decoded; for the business documents
// this tool targets the standard encodings dominate.
func pdfText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errdefs.Format(err, "failed to open %s", filepath.Base(path))
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", errdefs.Format(err, "%s is not a readable PDF", filepath.Base(path))
	}

	var sb strings.Builder
	for p := 1; p <= ctx.PageCount; p++ {
		r, err := pdf.ExtractPageContent(ctx, p)
		if err != nil {
			return "", errdefs.Format(err, "failed to extract page %d of %s", p, filepath.Base(path))
		}
		if r == nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return "", errdefs.Format(err, "failed to read page %d of %s", p, filepath.Base(path))
		}
		sb.WriteString(contentStreamText(raw))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// contentStreamText scans a decoded content stream for the Tj, TJ, ' and "
// operators and collects their string operands. Text positioning operators
// become line breaks.
func contentStreamText(raw []byte) string {
	var out strings.Builder
	var pending []string // string operands since the last operator

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == '(':
			s, n := literalString(raw[i:])
			pending = append(pending, s)
			i += n
		case c == '<' && i+1 < len(raw) && raw[i+1] != '<':
			s, n := hexString(raw[i:])
			pending = append(pending, s)
			i += n
		case c == '<': // dictionary, skip the <<
			i += 2
		case c == '%': // comment to end of line
			for i < len(raw) && raw[i] != '\n' && raw[i] != '\r' {
				i++
			}
		case isRegular(c):
			j := i
			for j < len(raw) && isRegular(raw[j]) {
				j++
			}
			op := string(raw[i:j])
			switch op {
			case "Tj", "TJ":
				for _, s := range pending {
					out.WriteString(s)
				}
				pending = pending[:0]
			case "'", "\"":
				out.WriteString("\n")
				for _, s := range pending {
					out.WriteString(s)
				}
				pending = pending[:0]
			case "Td", "TD", "T*", "ET":
				out.WriteString("\n")
				pending = pending[:0]
			default:
				if _, err := strconv.ParseFloat(op, 64); err != nil {
					// Some other operator consumed the operands.
					if len(op) > 0 && op[0] != '/' {
						pending = pending[:0]
					}
				}
			}
			i = j
		default:
			i++
		}
	}
	return out.String()
}

// literalString decodes a (...) string starting at raw[0] and returns it
// with the number of bytes consumed.
func literalString(raw []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
			i++
		case '\\':
			if i+1 >= len(raw) {
				return sb.String(), i + 1
			}
			e := raw[i+1]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// ignore
			case '(', ')', '\\':
				sb.WriteByte(e)
			case '\n', '\r':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val, n := octal(raw[i+1:])
					sb.WriteByte(byte(val))
					i += n - 1
				} else {
					sb.WriteByte(e)
				}
			}
			i += 2
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

func octal(raw []byte) (int, int) {
	val, n := 0, 0
	for n < 3 && n < len(raw) && raw[n] >= '0' && raw[n] <= '7' {
		val = val*8 + int(raw[n]-'0')
		n++
	}
	return val, n
}

// hexString decodes a <...> string and returns it with the bytes consumed.
func hexString(raw []byte) (string, int) {
	end := 1
	for end < len(raw) && raw[end] != '>' {
		end++
	}
	hex := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, string(raw[1:end]))
	if len(hex)%2 == 1 {
		hex += "0"
	}
	var sb strings.Builder
	for i := 0; i+2 <= len(hex); i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			break
		}
		if v >= 32 && v < 127 {
			sb.WriteByte(byte(v))
		}
	}
	consumed := end
	if end < len(raw) {
		consumed = end + 1
	}
	return sb.String(), consumed
}

func isRegular(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
