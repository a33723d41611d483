package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/httputil"
)

// Loader fetches dataset documents. URLs go through an HTTP client with
// retry and revalidation; anything else is read from the local filesystem.
type Loader struct {
	client *httputil.Client
}

// NewLoader returns a Loader using client, or a default client if nil.
func NewLoader(client *httputil.Client) *Loader {
	if client == nil {
		client = httputil.NewClient()
	}
	return &Loader{client: client}
}

// IsURL reports whether location is fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the raw document at location.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	if IsURL(location) {
		resp, err := l.client.GetBytes(ctx, location)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	if err := apperrors.ValidatePath(location); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read %s", location)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read %s", location)
	}
	return data, nil
}

// Decode parses a document into a hierarchy. A non-empty selector narrows it
// with [Select] first.
func Decode(data []byte, selector string) (*hierarchy.Node, error) {
	if selector == "" {
		return hierarchy.ParseBytes(data)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, hierarchy.Invalid("", "decode JSON: %v", err)
	}
	sub, err := Select(doc, selector)
	if err != nil {
		return nil, err
	}
	return hierarchy.FromValue(sub)
}

// Load fetches location and decodes it.
func (l *Loader) Load(ctx context.Context, location, selector string) (*hierarchy.Node, error) {
	data, err := l.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return Decode(data, selector)
}
