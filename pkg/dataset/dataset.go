// Package dataset names the hierarchical documents a treemap can be drawn
// from and fetches them.
//
// A [Registry] maps short keys ("videogames", "movies", "kickstarter") to a
// title, a description and a URL. The built-in registry can be extended or
// overridden from the [datasets] section of the config file. A [Loader]
// fetches a dataset by URL or reads a local file, and [Select] narrows a
// decoded document to a subtree with a JSONPath expression.
package dataset

import (
	"errors"
	"sort"

	"github.com/matzehuels/treemap/pkg/config"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
)

// ErrUnknown is returned by [Registry.Lookup] for keys that are not
// registered.
var ErrUnknown = errors.New("unknown dataset")

// DefaultKey is the dataset drawn when none is named.
const DefaultKey = "videogames"

// Dataset describes a named hierarchical document.
type Dataset struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

const baseURL = "https://cdn.rawgit.com/freeCodeCamp/testable-projects-fcc/a80ce8f9/src/data/tree_map/"

var builtins = []Dataset{
	{
		Key:         "videogames",
		Title:       "Video Game Sales",
		Description: "Top 100 Most Sold Video Games Grouped by Platform",
		URL:         baseURL + "video-game-sales-data.json",
	},
	{
		Key:         "movies",
		Title:       "Movie Sales",
		Description: "Top 100 Highest Grossing Movies Grouped By Genre",
		URL:         baseURL + "movie-data.json",
	},
	{
		Key:         "kickstarter",
		Title:       "Kickstarter Pledges",
		Description: "Top 100 Most Pledged Kickstarter Campaigns Grouped By Category",
		URL:         baseURL + "kickstarter-funding-data.json",
	},
}

// Registry is an immutable set of datasets with a default entry.
type Registry struct {
	datasets map[string]Dataset
	def      string
}

// NewRegistry builds a registry from datasets. Later entries replace earlier
// ones with the same key. def must name one of them.
func NewRegistry(def string, datasets ...Dataset) (*Registry, error) {
	r := &Registry{datasets: make(map[string]Dataset, len(datasets)), def: def}
	for _, d := range datasets {
		if err := apperrors.ValidateDatasetKey(d.Key); err != nil {
			return nil, err
		}
		if err := apperrors.ValidateURL(d.URL); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidDataset, err, "dataset %s", d.Key)
		}
		r.datasets[d.Key] = d
	}
	if _, ok := r.datasets[def]; !ok {
		return nil, apperrors.Wrap(apperrors.ErrCodeDatasetNotFound, ErrUnknown, "default dataset %q", def)
	}
	return r, nil
}

// Builtin returns the registry of the three reference datasets with
// "videogames" as the default.
func Builtin() *Registry {
	r, err := NewRegistry(DefaultKey, builtins...)
	if err != nil {
		panic(err)
	}
	return r
}

// FromConfig returns the built-in datasets merged with the [datasets]
// section of cfg. Configured entries override built-ins with the same key;
// missing title or description fields keep the built-in text.
func FromConfig(cfg *config.Config) (*Registry, error) {
	all := append([]Dataset(nil), builtins...)
	index := make(map[string]int, len(all))
	for i, d := range all {
		index[d.Key] = i
	}
	for _, key := range cfg.DatasetKeys() {
		c := cfg.Datasets[key]
		d := Dataset{Key: key, Title: c.Title, Description: c.Description, URL: c.URL}
		if i, ok := index[key]; ok {
			if d.Title == "" {
				d.Title = all[i].Title
			}
			if d.Description == "" {
				d.Description = all[i].Description
			}
			all[i] = d
			continue
		}
		if d.Title == "" {
			d.Title = key
		}
		index[key] = len(all)
		all = append(all, d)
	}

	def := cfg.DefaultDataset
	if def == "" {
		def = DefaultKey
	}
	return NewRegistry(def, all...)
}

// Lookup returns the dataset registered under key. An empty key selects the
// default dataset.
func (r *Registry) Lookup(key string) (Dataset, error) {
	if key == "" {
		key = r.def
	}
	d, ok := r.datasets[key]
	if !ok {
		return Dataset{}, apperrors.Wrap(apperrors.ErrCodeDatasetNotFound, ErrUnknown,
			"dataset %q (available: %v)", key, r.Keys())
	}
	return d, nil
}

// Default returns the default dataset.
func (r *Registry) Default() Dataset { return r.datasets[r.def] }

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.datasets))
	for k := range r.datasets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every dataset, sorted by key.
func (r *Registry) All() []Dataset {
	keys := r.Keys()
	out := make([]Dataset, len(keys))
	for i, k := range keys {
		out[i] = r.datasets[k]
	}
	return out
}
