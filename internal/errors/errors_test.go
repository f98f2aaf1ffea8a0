package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		errType Type
		status  int
	}{
		{TypeMissingParameters, http.StatusBadRequest},
		{TypeInvalidWeight, http.StatusBadRequest},
		{TypeMissingCredential, http.StatusUnauthorized},
		{TypeInvalidCredential, http.StatusUnauthorized},
		{TypeNoPricingRule, http.StatusNotFound},
		{TypeInternal, http.StatusInternalServerError},
		{TypeForbidden, http.StatusForbidden},
		{TypeConflict, http.StatusConflict},
		{Type("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			if got := HTTPStatus(tt.errType); got != tt.status {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.errType, got, tt.status)
			}
		})
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	inner := InvalidCredential()
	wrapped := fmt.Errorf("validating key: %w", inner)

	e, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find the domain error")
	}
	if e.Type != TypeInvalidCredential {
		t.Errorf("expected %s, got %s", TypeInvalidCredential, e.Type)
	}
	if !IsType(wrapped, TypeInvalidCredential) {
		t.Error("IsType should see through fmt wrapping")
	}
	if TypeOf(fmt.Errorf("plain")) != TypeInternal {
		t.Error("foreign errors should classify as internal")
	}
}

func TestNoPricingRuleCarriesKeys(t *testing.T) {
	err := NoPricingRule("Nigeria", "Kenya", "document")

	for _, want := range []string{"Nigeria", "Kenya", "document"} {
		if !strings.Contains(err.Message, want) {
			t.Errorf("message %q does not mention %q", err.Message, want)
		}
	}
	if err.Context["to"] != "Kenya" {
		t.Errorf("expected context to=Kenya, got %v", err.Context["to"])
	}
}

func TestMissingParametersNamesFields(t *testing.T) {
	err := MissingParameters("origin", "package_category")
	if err.Message != "missing required parameters: origin, package_category" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}
