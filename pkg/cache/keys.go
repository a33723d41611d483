package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	// DatasetKey keys the raw document behind a dataset key, URL or file.
	DatasetKey(source string) string

	// LayoutKey keys a computed layout of the tree with the given hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered output of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists everything besides the tree that changes a layout.
type LayoutKeyOpts struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Tiling       string  `json:"tiling"`
	Ratio        float64 `json:"ratio"`
	PaddingInner float64 `json:"padding_inner,omitempty"`
	PaddingOuter float64 `json:"padding_outer,omitempty"`
	PaddingTop   float64 `json:"padding_top,omitempty"`
	Round        bool    `json:"round,omitempty"`
}

// ArtifactKeyOpts lists everything besides the layout that changes an output.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	VizType string `json:"viz_type"`
	// Style is a hash of presentation settings (title, margins, palette).
	Style string `json:"style,omitempty"`
}

// DefaultKeyer produces keys of the form "<type>:<sha256>", where the hash
// covers the JSON encoding of the inputs. Struct fields marshal in
// declaration order, so equal options always give equal keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetKey(source string) string {
	return digestKey("dataset", source)
}

func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return digestKey("layout", treeHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digestKey("artifact", layoutHash, opts)
}

// ScopedKeyer prepends a fixed namespace to another Keyer's keys. It backs
// the cache.prefix setting, which lets a staging and a production server
// share one Redis or MongoDB without reading each other's layouts.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer namespaces inner under prefix. A nil inner means
// [DefaultKeyer]; the prefix is used verbatim, separator included.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) DatasetKey(source string) string {
	return k.prefix + k.inner.DatasetKey(source)
}

func (k ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// Hash returns the hex SHA-256 of data. Trees and layouts are identified by
// the hash of their canonical JSON.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func digestKey(kind string, parts ...any) string {
	// parts are strings and flat option structs, which always marshal.
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
