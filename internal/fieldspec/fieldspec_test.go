package fieldspec

import "testing"

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Applicant Name", "applicant_name"},
		{"  Total Amount (USD) ", "total_amount_usd"},
		{"e-mail address", "e_mail_address"},
		{"already_snake", "already_snake"},
		{"Weird___Gaps", "weird_gaps"},
		{"__leading_trailing__", "leading_trailing"},
	}
	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	uc := &UseCase{
		Name: "loans",
		Fields: []FieldSpec{
			{Name: "Borrower Name", Description: "full legal name"},
			{Name: "Loan Type", Description: "product category", Categories: []string{"Fixed", "Variable"}},
			{Name: "Term Months", Description: "loan term", Kind: KindInteger},
		},
	}
	uc.Normalize()

	if uc.Fields[0].Name != "borrower_name" || uc.Fields[0].Kind != KindText {
		t.Errorf("field 0 = %+v, want snake_case text", uc.Fields[0])
	}
	if uc.Fields[1].Kind != KindEnum {
		t.Errorf("category-bearing field inferred kind %q, want %q", uc.Fields[1].Kind, KindEnum)
	}
	if uc.Fields[2].Kind != KindInteger {
		t.Errorf("explicit kind overwritten: got %q", uc.Fields[2].Kind)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *UseCase {
		return &UseCase{
			Name:        "invoices",
			Description: "invoice processing",
			Fields: []FieldSpec{
				{Name: "vendor", Description: "vendor name", Kind: KindText},
				{Name: "status", Description: "payment status", Kind: KindEnum, Categories: []string{"paid", "open"}},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		uc := valid()
		uc.Name = "  "
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for empty use case name")
		}
	})

	t.Run("no fields", func(t *testing.T) {
		uc := valid()
		uc.Fields = nil
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for empty field list")
		}
	})

	t.Run("empty description", func(t *testing.T) {
		uc := valid()
		uc.Fields[0].Description = ""
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for empty field description")
		}
	})

	t.Run("duplicate names", func(t *testing.T) {
		uc := valid()
		uc.Fields[1] = uc.Fields[0]
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for duplicate field names")
		}
	})

	t.Run("categories without enumerated kind", func(t *testing.T) {
		uc := valid()
		uc.Fields[0].Categories = []string{"a", "b"}
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for categories on a text field")
		}
	})

	t.Run("enumerated kind without categories", func(t *testing.T) {
		uc := valid()
		uc.Fields[1].Categories = nil
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for enumerated field without categories")
		}
	})

	t.Run("empty category value", func(t *testing.T) {
		uc := valid()
		uc.Fields[1].Categories = []string{"paid", " "}
		if err := uc.Validate(); err == nil {
			t.Fatal("expected error for blank category")
		}
	})
}
