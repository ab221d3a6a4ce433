package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidQuoteType    = "INVALID_QUOTE_TYPE"
	ErrCodeInvalidPineconeType = "INVALID_PINECONE_TYPE"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a client-visible business rule failure. Handlers map it to
// a 400-class response with the message as the field-level explanation.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewMissingFieldError reports a required request field that was absent or empty.
func NewMissingFieldError(field string) *DomainError {
	return NewDomainError(ErrCodeMissingField, fmt.Sprintf("%s is required", field))
}

// Common domain errors
var (
	ErrInvalidQuoteType    = NewDomainError(ErrCodeInvalidQuoteType, "Quote type must be one of funny, sad or sarcastic")
	ErrInvalidPineconeType = NewDomainError(ErrCodeInvalidPineconeType, "Invalid pinecone type")
	ErrInvalidEmail        = NewDomainError(ErrCodeInvalidEmail, "A valid email address is required")
)
