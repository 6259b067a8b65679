package constants

import "net/http"

// CodedError carries an HTTP status code alongside the message so the API
// error handler can answer with the right status without string matching.
type CodedError struct {
	code    int
	message string
}

func NewCodedError(code int, message string) *CodedError {
	return &CodedError{code: code, message: message}
}

func (e *CodedError) Error() string {
	return e.message
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound    = NewCodedError(http.StatusNotFound, "not found")
	ErrUnauthorized  = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrBadRequest    = NewCodedError(http.StatusBadRequest, "bad request")
	ErrMissingConfig = NewCodedError(http.StatusInternalServerError, "missing required configuration")
)
