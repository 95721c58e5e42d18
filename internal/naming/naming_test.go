package naming

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "etl"},
		{name: "dashes and dots", input: "etl-v1.daily"},
		{name: "digits", input: "0day"},
		{name: "empty", input: "", wantErr: true},
		{name: "uppercase", input: "ETL", wantErr: true},
		{name: "underscore", input: "my_dag", wantErr: true},
		{name: "trailing dash", input: "etl-", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxLength+1), wantErr: true},
		{name: "max length", input: strings.Repeat("a", MaxLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Fatalf("Validate(%q) error = %v, want ErrInvalidName", tt.input, err)
			}
		})
	}
}

func TestValidateGenerateNameAllowsTrailingSeparator(t *testing.T) {
	if err := ValidateGenerateName("etl-"); err != nil {
		t.Fatalf("ValidateGenerateName(etl-) error = %v", err)
	}
	if err := ValidateGenerateName("-"); err == nil {
		t.Fatalf("expected error for separator-only prefix")
	}
}

func TestResolveRequiresOneName(t *testing.T) {
	if err := Resolve("", ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Resolve(\"\", \"\") error = %v, want ErrInvalidName", err)
	}
	if err := Resolve("", "etl-"); err != nil {
		t.Fatalf("Resolve with generate name error = %v", err)
	}
	if err := Resolve("Bad", ""); err == nil {
		t.Fatalf("expected error for invalid name")
	}
}
