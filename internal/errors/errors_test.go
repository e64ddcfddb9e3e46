package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	plain := NewDomainError(CodeNotFound, "video not found")
	if plain.Error() != "video not found" {
		t.Errorf("Expected bare message, got %q", plain.Error())
	}

	wrapped := WrapError(ErrInternal, fmt.Errorf("dial tcp: refused"))
	if wrapped.Error() != "internal server error: dial tcp: refused" {
		t.Errorf("Unexpected wrapped message: %q", wrapped.Error())
	}
}

func TestWrapError_PreservesIdentity(t *testing.T) {
	underlying := stderrors.New("row not found")
	wrapped := WrapError(ErrVideoNotFound, underlying)

	if !stderrors.Is(wrapped, underlying) {
		t.Error("Expected wrapped error to match underlying with errors.Is")
	}

	var domainErr *DomainError
	if !stderrors.As(wrapped, &domainErr) {
		t.Fatal("Expected errors.As to find DomainError")
	}
	if domainErr.Code != CodeNotFound {
		t.Errorf("Expected code %s, got %s", CodeNotFound, domainErr.Code)
	}
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ErrInvalidInput, http.StatusBadRequest},
		{"authentication", ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid refresh token", ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"authorization", ErrNotOwner, http.StatusForbidden},
		{"not found", ErrVideoNotFound, http.StatusNotFound},
		{"conflict", ErrUserExists, http.StatusConflict},
		{"upstream", ErrMediaUpload, http.StatusBadGateway},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown error type", stderrors.New("boom"), http.StatusInternalServerError},
		{"wrapped keeps status", WrapError(ErrUserNotFound, stderrors.New("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTPStatus(tt.err); got != tt.expected {
				t.Errorf("ToHTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	wrapped := WrapError(ErrInvalidToken, stderrors.New("signature invalid"))
	if got := GetErrorMessage(wrapped); got != "invalid or expired token" {
		t.Errorf("Expected domain message without internals, got %q", got)
	}

	if got := GetErrorMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("Expected raw message, got %q", got)
	}

	if got := GetErrorMessage(nil); got != "" {
		t.Errorf("Expected empty message for nil, got %q", got)
	}
}

func TestWithMessage(t *testing.T) {
	custom := WithMessage(ErrInvalidInput, "title is required")
	if custom.Code != CodeValidation {
		t.Errorf("Expected code preserved, got %s", custom.Code)
	}
	if custom.Message != "title is required" {
		t.Errorf("Expected replaced message, got %q", custom.Message)
	}
	if ToHTTPStatus(custom) != http.StatusBadRequest {
		t.Error("Expected replaced message to keep status mapping")
	}
}
