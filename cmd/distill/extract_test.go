package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/docdistill/distill/internal/extract"
	"github.com/docdistill/distill/internal/schema"
)

func TestReportFailures(t *testing.T) {
	results := []*extract.Result{
		{Source: "clean.pdf"},
		{
			Source: "resume.pdf",
			Flags: []schema.FieldFlag{
				{Field: "seniority", Raw: "SENIOR", Note: "normalized-case"},
				{Field: "department", Raw: "Entertainment", Note: "uncategorized"},
			},
		},
		{Source: "broken.docx", Err: errors.New("validation failed")},
	}
	parseFailures := map[string]error{
		"scan.doc": errors.New("no readable text"),
	}

	var b strings.Builder
	reportFailures(&b, parseFailures, results)
	out := b.String()

	if !strings.Contains(out, "Skipped (unreadable):") || !strings.Contains(out, "scan.doc: no readable text") {
		t.Errorf("parse failures not reported:\n%s", out)
	}
	if !strings.Contains(out, "Failed:") || !strings.Contains(out, "broken.docx: validation failed") {
		t.Errorf("extraction failures not reported:\n%s", out)
	}
	if !strings.Contains(out, "Adjusted values:") {
		t.Errorf("flag section missing:\n%s", out)
	}
	if !strings.Contains(out, `resume.pdf: seniority "SENIOR" (normalized-case)`) {
		t.Errorf("normalized-case flag not reported:\n%s", out)
	}
	if !strings.Contains(out, `resume.pdf: department "Entertainment" (uncategorized)`) {
		t.Errorf("uncategorized flag not reported:\n%s", out)
	}
	if strings.Contains(out, "clean.pdf") {
		t.Errorf("unflagged clean result should not appear:\n%s", out)
	}
}

func TestReportFailuresQuietWhenClean(t *testing.T) {
	var b strings.Builder
	reportFailures(&b, nil, []*extract.Result{{Source: "clean.pdf"}})
	if b.Len() != 0 {
		t.Errorf("expected no output for a clean batch, got:\n%s", b.String())
	}
}
