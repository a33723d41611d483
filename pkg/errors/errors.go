// Package errors provides structured error types for treemap.
//
// Errors carry a machine-readable [Code]. The CLI prints [UserMessage] and
// the HTTP server answers with [HTTPStatus], so neither has to match on
// error strings.
//
// # Error Codes
//
// Codes follow a prefix convention:
//   - INVALID_*: malformed input (tree, size, dataset key, tiling, config)
//   - *NOT_FOUND: unknown dataset or missing file
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: dataset fetch failures
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSize, "width must be positive, got %g", w)
//	if errors.Is(err, errors.ErrCodeInvalidSize) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidTree    Code = "INVALID_TREE"
	ErrCodeInvalidSize    Code = "INVALID_SIZE"
	ErrCodeInvalidDataset Code = "INVALID_DATASET"
	ErrCodeInvalidTiling  Code = "INVALID_TILING"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeDatasetNotFound Code = "DATASET_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// statusByCode lists the HTTP answer for each code. Codes not listed,
// INVALID_CONFIG among them, are server-side problems and map to 500.
var statusByCode = map[Code]int{
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidTree:    http.StatusBadRequest,
	ErrCodeInvalidSize:    http.StatusBadRequest,
	ErrCodeInvalidDataset: http.StatusBadRequest,
	ErrCodeInvalidTiling:  http.StatusBadRequest,
	ErrCodeInvalidFormat:  http.StatusBadRequest,
	ErrCodeInvalidPath:    http.StatusBadRequest,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeDatasetNotFound: http.StatusNotFound,
	ErrCodeFileNotFound:    http.StatusNotFound,

	ErrCodeNetwork:     http.StatusBadGateway,
	ErrCodeRateLimited: http.StatusBadGateway,
	ErrCodeTimeout:     http.StatusGatewayTimeout,

	ErrCodeUnsupported: http.StatusNotImplemented,
}

// Status returns the HTTP status for c.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Coder is implemented by errors that know their own code without being an
// [*Error], such as [RateLimitedError].
type Coder interface {
	error
	Code() Code
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause, which stays reachable through errors.Is/As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the outermost code in err's chain, or "" if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Is reports whether the outermost code in err's chain is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage renders err for a terminal: the message and its cause, without
// the code. Uncoded errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// HTTPStatus maps err to a response status via its code.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}

// RateLimitedError is an upstream 429. RetryAfter is zero when the origin
// sent no usable Retry-After header.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
