package document

import (
	"archive/zip"
	"encoding/xml"
	"path/filepath"
	"strings"

	"github.com/docdistill/distill/internal/errdefs"
)

// docxText reads word/document.xml out of the DOCX container and flattens
// the WordprocessingML body to plain text. Paragraphs become lines, tabs
// and explicit breaks are preserved.
func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", errdefs.Format(err, "%s is not a readable DOCX container", filepath.Base(path))
	}
	defer zr.Close()

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", errdefs.Format(nil, "%s has no word/document.xml", filepath.Base(path))
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", errdefs.Format(err, "failed to open document body of %s", filepath.Base(path))
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			case "tc":
				// cell boundary inside a table row
				sb.WriteByte('\t')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
