// Package export writes extraction results to XLSX, CSV, and JSON. Column
// order always follows the schema's field order so every export of a use
// case lines up.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docdistill/distill/internal/extract"
	"github.com/docdistill/distill/internal/schema"
)

// Format names a supported output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (xlsx, csv, json)", s)
}

const sourceColumn = "source_document"

// Write renders the successful results to w in the requested format.
// Failed results are skipped; the caller reports them from the batch
// summary.
func Write(w io.Writer, format Format, art *schema.Artifact, results []*extract.Result) error {
	rows, err := tabulate(art, results)
	if err != nil {
		return err
	}
	switch format {
	case FormatXLSX:
		return writeXLSX(w, art, rows)
	case FormatCSV:
		return writeCSV(w, art, rows)
	case FormatJSON:
		return writeJSON(w, art, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// row is one record keyed by schema field name, plus the source document.
type row struct {
	source string
	fields map[string]any
}

func tabulate(art *schema.Artifact, results []*extract.Result) ([]row, error) {
	var rows []row
	for _, r := range results {
		if r.Err != nil || len(r.Fields) == 0 {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(r.Fields, &fields); err != nil {
			return nil, fmt.Errorf("result for %s is not a JSON object: %w", r.Source, err)
		}
		rows = append(rows, row{source: r.Source, fields: fields})
	}
	return rows, nil
}

func headers(art *schema.Artifact) []string {
	hs := make([]string, 0, len(art.Fields)+1)
	hs = append(hs, sourceColumn)
	for _, f := range art.Fields {
		hs = append(hs, f.Name)
	}
	return hs
}

// cellValue flattens a field value for tabular output. Lists join with
// "; ", null becomes the empty string.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, "; ")
	default:
		return val
	}
}

func writeXLSX(w io.Writer, art *schema.Artifact, rows []row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Extracted"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for col, h := range headers(art) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, r := range rows {
		values := append([]any{r.source}, fieldValues(art, r)...)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func writeCSV(w io.Writer, art *schema.Artifact, rows []row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers(art)); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, 0, len(art.Fields)+1)
		record = append(record, r.source)
		for _, v := range fieldValues(art, r) {
			record = append(record, fmt.Sprintf("%v", cellValue(v)))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, art *schema.Artifact, rows []row) error {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		rec := make(map[string]any, len(art.Fields)+1)
		rec[sourceColumn] = r.source
		for _, f := range art.Fields {
			rec[f.Name] = r.fields[f.Name]
		}
		out = append(out, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func fieldValues(art *schema.Artifact, r row) []any {
	vals := make([]any, 0, len(art.Fields))
	for _, f := range art.Fields {
		vals = append(vals, r.fields[f.Name])
	}
	return vals
}
