package schema

import (
	"encoding/json"
	"testing"

	"github.com/docdistill/distill/internal/fieldspec"
)

func TestValidateRecord(t *testing.T) {
	art := &Artifact{
		UseCase: "expenses",
		Fields: []Field{
			{Name: "merchant", Kind: fieldspec.KindText, Description: "merchant", Required: true},
			{Name: "category", Kind: fieldspec.KindEnum, Enum: []string{"Travel", "Meals", "Office"}, Description: "category", Required: true},
			{Name: "tags", Kind: fieldspec.KindEnumList, Enum: []string{"reimbursable", "personal"}, Description: "tags"},
		},
	}
	if err := art.Seal(); err != nil {
		t.Fatal(err)
	}

	t.Run("exact values pass unflagged", func(t *testing.T) {
		out, flags, err := ValidateRecord(art, json.RawMessage(`{"merchant":"Cafe","category":"Meals"}`))
		if err != nil {
			t.Fatalf("ValidateRecord() error = %v", err)
		}
		if len(flags) != 0 {
			t.Errorf("flags = %v, want none", flags)
		}
		var rec map[string]any
		json.Unmarshal(out, &rec)
		if rec["category"] != "Meals" {
			t.Errorf("category = %v", rec["category"])
		}
	})

	t.Run("case mismatch normalizes to canonical spelling", func(t *testing.T) {
		out, flags, err := ValidateRecord(art, json.RawMessage(`{"merchant":"Cafe","category":"MEALS"}`))
		if err != nil {
			t.Fatalf("ValidateRecord() error = %v", err)
		}
		if len(flags) != 1 || flags[0].Note != "normalized-case" || flags[0].Field != "category" {
			t.Errorf("flags = %v, want one normalized-case flag on category", flags)
		}
		var rec map[string]any
		json.Unmarshal(out, &rec)
		if rec["category"] != "Meals" {
			t.Errorf("category = %v, want canonical Meals", rec["category"])
		}
	})

	t.Run("out-of-set value maps to the sentinel", func(t *testing.T) {
		out, flags, err := ValidateRecord(art, json.RawMessage(`{"merchant":"Cafe","category":"Entertainment"}`))
		if err != nil {
			t.Fatalf("ValidateRecord() error = %v", err)
		}
		if len(flags) != 1 || flags[0].Note != "uncategorized" || flags[0].Raw != "Entertainment" {
			t.Errorf("flags = %v, want one uncategorized flag carrying the raw value", flags)
		}
		var rec map[string]any
		json.Unmarshal(out, &rec)
		if rec["category"] != Uncategorized {
			t.Errorf("category = %v, want %q", rec["category"], Uncategorized)
		}
	})

	t.Run("list values normalize element-wise", func(t *testing.T) {
		out, flags, err := ValidateRecord(art, json.RawMessage(
			`{"merchant":"Cafe","category":"Meals","tags":["REIMBURSABLE","unknown-tag"]}`))
		if err != nil {
			t.Fatalf("ValidateRecord() error = %v", err)
		}
		if len(flags) != 2 {
			t.Fatalf("flags = %v, want two", flags)
		}
		var rec map[string]any
		json.Unmarshal(out, &rec)
		tags := rec["tags"].([]any)
		if tags[0] != "reimbursable" || tags[1] != Uncategorized {
			t.Errorf("tags = %v", tags)
		}
	})

	t.Run("optional not-found marker becomes null", func(t *testing.T) {
		optArt := &Artifact{
			UseCase: "expenses",
			Fields: []Field{
				{Name: "category", Kind: fieldspec.KindEnum, Enum: []string{"Travel"}, Description: "category"},
			},
		}
		if err := optArt.Seal(); err != nil {
			t.Fatal(err)
		}
		out, flags, err := ValidateRecord(optArt, json.RawMessage(`{"category":"n/a"}`))
		if err != nil {
			t.Fatalf("ValidateRecord() error = %v", err)
		}
		if len(flags) != 0 {
			t.Errorf("flags = %v, want none for not-found", flags)
		}
		var rec map[string]any
		json.Unmarshal(out, &rec)
		if v, present := rec["category"]; !present || v != nil {
			t.Errorf("category = %v, want null", v)
		}
	})

	t.Run("missing required field fails validation", func(t *testing.T) {
		_, _, err := ValidateRecord(art, json.RawMessage(`{"category":"Meals"}`))
		if err == nil {
			t.Fatal("expected validation error for missing required merchant")
		}
	})

	t.Run("unexpected field fails validation", func(t *testing.T) {
		_, _, err := ValidateRecord(art, json.RawMessage(`{"merchant":"Cafe","category":"Meals","surprise":1}`))
		if err == nil {
			t.Fatal("expected validation error for additional property")
		}
	})

	t.Run("non-object record is rejected", func(t *testing.T) {
		_, _, err := ValidateRecord(art, json.RawMessage(`[1,2]`))
		if err == nil {
			t.Fatal("expected error for non-object record")
		}
	})
}
