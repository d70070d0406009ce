package schema

import (
	"encoding/json"
	"testing"

	"github.com/docdistill/distill/internal/fieldspec"
)

func testArtifact() *Artifact {
	a := &Artifact{
		UseCase: "resumes",
		Fields: []Field{
			{Name: "name", Kind: fieldspec.KindText, Description: "full name", Required: true},
			{Name: "age", Kind: fieldspec.KindInteger, Description: "age in years"},
			{Name: "seniority", Kind: fieldspec.KindEnum, Enum: []string{"junior", "senior"}, Description: "level"},
			{Name: "skills", Kind: fieldspec.KindTextList, Description: "skill list"},
		},
	}
	if err := a.Seal(); err != nil {
		panic(err)
	}
	return a
}

func TestSealIsDeterministic(t *testing.T) {
	a := testArtifact()
	b := testArtifact()
	if a.Hash == "" {
		t.Fatal("Seal() produced an empty hash")
	}
	if a.Hash != b.Hash {
		t.Errorf("identical field lists hashed differently: %s vs %s", a.Hash, b.Hash)
	}

	b.Fields[0].Description = "changed"
	if err := b.Seal(); err != nil {
		t.Fatal(err)
	}
	if a.Hash == b.Hash {
		t.Error("changed field list produced the same hash")
	}
}

func TestJSONSchemaRendering(t *testing.T) {
	raw, err := testArtifact().JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}

	if doc["type"] != "object" || doc["additionalProperties"] != false {
		t.Errorf("unexpected top-level schema: %v", doc)
	}
	props := doc["properties"].(map[string]any)

	t.Run("every property is listed as required", func(t *testing.T) {
		// Strict structured-output mode rejects schemas whose required
		// array omits any property; optionality rides on nullable types.
		required, _ := doc["required"].([]any)
		if len(required) != len(props) {
			t.Fatalf("required = %v, want all %d properties", required, len(props))
		}
		seen := make(map[string]bool, len(required))
		for _, r := range required {
			seen[r.(string)] = true
		}
		for name := range props {
			if !seen[name] {
				t.Errorf("property %q missing from required", name)
			}
		}
	})

	t.Run("required text stays non-nullable", func(t *testing.T) {
		name := props["name"].(map[string]any)
		if name["type"] != "string" {
			t.Errorf("name type = %v, want string", name["type"])
		}
	})

	t.Run("optional fields admit null", func(t *testing.T) {
		age := props["age"].(map[string]any)
		types, ok := age["type"].([]any)
		if !ok || len(types) != 2 || types[0] != "integer" || types[1] != "null" {
			t.Errorf("age type = %v, want [integer null]", age["type"])
		}
	})

	t.Run("strict schema excludes the sentinel", func(t *testing.T) {
		sen := props["seniority"].(map[string]any)
		enum := sen["enum"].([]any)
		for _, v := range enum {
			if v == Uncategorized {
				t.Error("provider-facing schema must not admit the uncategorized sentinel")
			}
		}
	})
}

func TestValidationSchemaAdmitsSentinel(t *testing.T) {
	raw, err := testArtifact().ValidationSchema()
	if err != nil {
		t.Fatalf("ValidationSchema() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	sen := doc["properties"].(map[string]any)["seniority"].(map[string]any)
	found := false
	for _, v := range sen["enum"].([]any) {
		if v == Uncategorized {
			found = true
		}
	}
	if !found {
		t.Error("validation schema must admit the uncategorized sentinel")
	}

	// Locally, records may omit optional fields entirely.
	required, _ := doc["required"].([]any)
	if len(required) != 1 || required[0] != "name" {
		t.Errorf("required = %v, want [name]", required)
	}
}
