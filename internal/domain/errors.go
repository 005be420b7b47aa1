package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code and message, so wrapped
// copies of a sentinel still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// WithCause returns a copy of the error carrying an underlying cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "PROVIDER_UNAVAILABLE"
	ErrCodeTimeout          = "PROVIDER_TIMEOUT"
	ErrCodeStorageCorrupt   = "STORAGE_CORRUPT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Ingestion errors
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeValidation, "unsupported file type")
	ErrInvalidChunkConfig  = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrEmptyDocument       = NewDomainError(ErrCodeValidation, "document contains no extractable text")
)

// Provider errors
var (
	ErrEmbeddingProviderUnavailable = NewDomainError(ErrCodeUnavailable, "embedding provider unavailable")
	ErrBackendUnavailable           = NewDomainError(ErrCodeUnavailable, "language model backend unavailable")
	ErrAssistantUnavailable         = NewDomainError(ErrCodeUnavailable, "knowledge assistant unavailable")
	ErrWebSearchUnavailable         = NewDomainError(ErrCodeUnavailable, "web search unavailable")
	ErrProviderTimeout              = NewDomainError(ErrCodeTimeout, "provider call timed out")
)

// Storage errors
var (
	ErrFileNotFound   = NewDomainError(ErrCodeNotFound, "no indexed chunks for the given file")
	ErrStorageCorrupt = NewDomainError(ErrCodeStorageCorrupt, "backing store is corrupt")
)
