package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: CodeNoSuchKey, Message: "The specified key does not exist."}
	if err.Error() != "NoSuchKey: The specified key does not exist." {
		t.Errorf("unexpected message: %s", err.Error())
	}

	bare := &APIError{Code: CodeAccessDenied}
	if bare.Error() != "AccessDenied" {
		t.Errorf("unexpected message: %s", bare.Error())
	}
}

func TestAsAPIError_Unwraps(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", &APIError{Code: CodeNoSuchBucket})

	apiErr, ok := AsAPIError(wrapped)
	if !ok {
		t.Fatal("expected wrapped APIError to be found")
	}
	if apiErr.Code != CodeNoSuchBucket {
		t.Errorf("expected NoSuchBucket, got %s", apiErr.Code)
	}
	if ErrorCode(wrapped) != CodeNoSuchBucket {
		t.Errorf("ErrorCode = %q", ErrorCode(wrapped))
	}
}

func TestErrorCode_OpaqueError(t *testing.T) {
	if code := ErrorCode(errors.New("connection refused")); code != "" {
		t.Errorf("expected empty code, got %q", code)
	}
	if _, ok := AsAPIError(nil); ok {
		t.Error("nil must not be an APIError")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such key", &APIError{Code: CodeNoSuchKey}, true},
		{"head not found", &APIError{Code: CodeNotFound}, true},
		{"no such bucket", &APIError{Code: CodeNoSuchBucket}, true},
		{"status 404", &APIError{Code: "Whatever", StatusCode: http.StatusNotFound}, true},
		{"access denied", &APIError{Code: CodeAccessDenied, StatusCode: http.StatusForbidden}, false},
		{"opaque", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}
