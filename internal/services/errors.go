package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Backend error codes the console reacts to
const (
	CodeNoSuchBucket            = "NoSuchBucket"
	CodeNoSuchKey               = "NoSuchKey"
	CodeNotFound                = "NotFound"
	CodeBucketAlreadyExists     = "BucketAlreadyExists"
	CodeBucketAlreadyOwnedByYou = "BucketAlreadyOwnedByYou"
	CodeBucketNotEmpty          = "BucketNotEmpty"
	CodeInvalidBucketName       = "InvalidBucketName"
	CodeAccessDenied            = "AccessDenied"
)

// APIError is a structured error returned by the storage backend
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Bucket     string
	Key        string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsAPIError unwraps err into an *APIError if it carries one
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrorCode returns the backend error code, or "" for unclassified failures
func ErrorCode(err error) string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Code
	}
	return ""
}

// IsNotFound reports whether err means the object (or its bucket) is missing
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case CodeNoSuchKey, CodeNotFound, CodeNoSuchBucket:
		return true
	}
	return apiErr.StatusCode == http.StatusNotFound
}
