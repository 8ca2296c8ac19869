package model

import (
	"errors"
	"strings"
	"testing"
)

func validApplication() *Application {
	return &Application{
		Name:          "web",
		Namespace:     "prod",
		RetryInterval: "1m",
		Timeout:       "5m",
		Interval:      "10m",
		DependsOn:     []DependencyRef{{Name: "db", Namespace: "prod"}},
	}
}

func TestValidateApplication_Valid(t *testing.T) {
	if err := ValidateApplication(validApplication()); err != nil {
		t.Fatalf("expected valid application, got %v", err)
	}
}

func TestValidateApplication_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name      string
		mutate    func(a *Application)
		wantField string
	}{
		{"MissingName", func(a *Application) { a.Name = "" }, "name"},
		{"MissingNamespace", func(a *Application) { a.Namespace = "" }, "namespace"},
		{"ColonInName", func(a *Application) { a.Name = "we:b" }, "name"},
		{"SlashInNamespace", func(a *Application) { a.Namespace = "pr/od" }, "namespace"},
		{"BadTimeout", func(a *Application) { a.Timeout = "soon" }, "timeout"},
		{"DependencyWithoutNamespace", func(a *Application) {
			a.DependsOn = []DependencyRef{{Name: "db"}}
		}, "dependsOn[0].namespace"},
		{"SubstituteWithoutKey", func(a *Application) {
			a.Substitute = []SubstituteVar{{Value: "x"}}
		}, "substitute[0].key"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			app := validApplication()
			tc.mutate(app)

			err := ValidateApplication(app)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			found := false
			for _, fe := range ve.Errors {
				if fe.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tc.wantField, ve)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "timeout", Message: "invalid duration"},
	}}
	got := ve.Error()
	if !strings.HasPrefix(got, "validation failed: ") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "name: is required; timeout: invalid duration") {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestValidateEntryName(t *testing.T) {
	if err := ValidateEntryName("nginx"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEntryName("   "); err == nil {
		t.Error("expected error for blank name")
	}
}
