package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ngetahun/bugzilla-mcp/internal/bugzilla"

	"github.com/natefinch/atomic"
)

// CacheFileName is the fixed name of the search-options cache file,
// resolved against the process working directory. Not configurable.
const CacheFileName = ".bugzilla.cache.json"

// SearchOptions is the search metadata derived from the tracker and
// persisted to disk.
type SearchOptions struct {
	Products   []string          `json:"products"`
	Statuses   []string          `json:"statuses"`
	Priorities []string          `json:"priorities"`
	Severities []string          `json:"severities"`
	SearchTips map[string]string `json:"search_tips"`
}

// Empty reports whether nothing tracker-derived was assembled. The
// static search tips never count towards non-emptiness.
func (o SearchOptions) Empty() bool {
	return len(o.Products) == 0 &&
		len(o.Statuses) == 0 &&
		len(o.Priorities) == 0 &&
		len(o.Severities) == 0
}

// searchTips is the static guidance shipped with every derived options
// object.
func searchTips() map[string]string {
	return map[string]string{
		"status":          "Common values: NEW, ASSIGNED, RESOLVED, VERIFIED, CLOSED",
		"priority":        "Common values: P1 (highest) to P5 (lowest)",
		"severity":        "Common values: blocker, critical, major, normal, minor, trivial",
		"wildcards":       "Use * for wildcards in text searches",
		"multiple_values": "Separate multiple values with commas",
	}
}

// DeriveError wraps a failure while deriving options from the tracker.
// Callers report it as a structured payload instead of a hard failure;
// any other error from Options.Get is meant to propagate.
type DeriveError struct {
	Err error
}

func (e *DeriveError) Error() string { return e.Err.Error() }

func (e *DeriveError) Unwrap() error { return e.Err }

// Options serves search metadata from a one-shot cache file, deriving it
// from the tracker on first use. The file never expires; it is refreshed
// only by external deletion.
type Options struct {
	source bugzilla.MetadataSource
	path   string
	logger *slog.Logger
}

// NewOptions returns an Options cache backed by <dir>/.bugzilla.cache.json.
func NewOptions(source bugzilla.MetadataSource, dir string, logger *slog.Logger) *Options {
	return &Options{
		source: source,
		path:   filepath.Join(dir, CacheFileName),
		logger: logger,
	}
}

// Path returns the cache file path.
func (o *Options) Path() string { return o.path }

// Get returns the serialized search options. An existing cache file is
// served verbatim with no shape validation or expiry check. Without a
// file, options are assembled progressively from the tracker; whatever
// was assembled is persisted even when assembly fails partway, and the
// failure is reported separately as a *DeriveError.
//
// The file is written atomically, but there is no lock around the
// exists-then-write sequence: concurrent writers race and the last one
// wins. Single-writer usage is assumed.
func (o *Options) Get(ctx context.Context) (json.RawMessage, error) {
	raw, err := os.ReadFile(o.path)
	switch {
	case err == nil:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("cache file %s does not contain valid JSON", o.path)
		}
		return json.RawMessage(raw), nil
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	opts, deriveErr := o.derive(ctx)

	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode search options: %w", err)
	}

	if !opts.Empty() {
		if err := atomic.WriteFile(o.path, bytes.NewReader(data)); err != nil {
			o.logger.Warn("persisting search options cache", "path", o.path, "error", err)
		}
	}

	if deriveErr != nil {
		return nil, &DeriveError{Err: deriveErr}
	}
	return json.RawMessage(data), nil
}

// derive assembles search options from the tracker. On error it returns
// whatever was assembled up to that point alongside the error.
func (o *Options) derive(ctx context.Context) (SearchOptions, error) {
	opts := SearchOptions{
		Products:   []string{},
		Statuses:   []string{},
		Priorities: []string{},
		Severities: []string{},
		SearchTips: searchTips(),
	}

	products, err := o.source.Products(ctx)
	if err != nil {
		return opts, fmt.Errorf("list products: %w", err)
	}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		opts.Products = append(opts.Products, p.Name)
	}

	fields, err := o.source.BugFields(ctx)
	if err != nil {
		return opts, fmt.Errorf("list bug fields: %w", err)
	}
	for _, f := range fields {
		switch f.Name {
		case "bug_status":
			opts.Statuses = valueNames(f)
		case "priority":
			opts.Priorities = valueNames(f)
		case "bug_severity":
			opts.Severities = valueNames(f)
		}
	}

	return opts, nil
}

func valueNames(f bugzilla.Field) []string {
	names := make([]string, 0, len(f.Values))
	for _, v := range f.Values {
		names = append(names, v.Name)
	}
	return names
}
