package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		want    string
		wantMsg string
	}{
		{
			name:    "plain",
			err:     New(ErrCodeInvalidTiling, "unknown tiling %q", "spiral"),
			want:    `INVALID_TILING: unknown tiling "spiral"`,
			wantMsg: `unknown tiling "spiral"`,
		},
		{
			name:    "with cause",
			err:     Wrap(ErrCodeNetwork, errors.New("connection refused"), "fetch %s", "movies"),
			want:    "NETWORK_ERROR: fetch movies: connection refused",
			wantMsg: "fetch movies: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeTimeout, context.DeadlineExceeded, "fetch videogames")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, DeadlineExceeded) = false")
	}
	if errors.Unwrap(err) != context.DeadlineExceeded {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}

	// A coded error survives further fmt wrapping.
	outer := fmt.Errorf("load: %w", err)
	if !Is(outer, ErrCodeTimeout) {
		t.Errorf("Is(%v, TIMEOUT) = false", outer)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidDataset, "bad key"), ErrCodeInvalidDataset},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidTree, "inner"), "outer"), ErrCodeNetwork},
		{"fmt wrapped", fmt.Errorf("render: %w", New(ErrCodeInvalidFormat, "gif")), ErrCodeInvalidFormat},
		{"coder", &RateLimitedError{}, ErrCodeRateLimited},
		{"wrapped coder", fmt.Errorf("fetch: %w", &RateLimitedError{}), ErrCodeRateLimited},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %s) = false", tt.want)
			}
		})
	}
	if Is(nil, "") {
		t.Error("Is(nil, \"\") = true, want false")
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("disk full")); got != "disk full" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidTree, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidSize, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{New(ErrCodeDatasetNotFound, "x"), http.StatusNotFound},
		{Wrap(ErrCodeNetwork, errors.New("eof"), "x"), http.StatusBadGateway},
		{&RateLimitedError{}, http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "png"), http.StatusNotImplemented},
		{New(ErrCodeInvalidConfig, "x"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(GetCode(tt.err)), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	if got, want := (&RateLimitedError{RetryAfter: time.Minute}).Error(), "rate limited: retry after 1m0s"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (&RateLimitedError{}).Error(); got != "rate limited" {
		t.Errorf("Error() = %q, want %q", got, "rate limited")
	}
}
