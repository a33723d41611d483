package errors

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// maxPathLength bounds paths taken from flags and config files.
const maxPathLength = 500

// datasetKeyPattern matches registry keys such as "videogames" or
// "box-office": lowercase, at most 64 bytes, never starting with a separator.
var datasetKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateDatasetKey checks a key from --data, the config file or ?data=.
func ValidateDatasetKey(key string) error {
	switch {
	case key == "":
		return New(ErrCodeInvalidDataset, "dataset key cannot be empty")
	case !datasetKeyPattern.MatchString(key):
		return New(ErrCodeInvalidDataset, "invalid dataset key: %q", key)
	}
	return nil
}

// ValidateSize rejects non-finite and non-positive dimensions. name appears
// in the message ("width must be positive, got -10").
func ValidateSize(name string, v float64) error {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return New(ErrCodeInvalidSize, "%s is not finite", name)
	case v <= 0:
		return New(ErrCodeInvalidSize, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidatePath checks an input or output file path: non-empty, at most
// maxPathLength bytes, no control characters.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme, got %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
