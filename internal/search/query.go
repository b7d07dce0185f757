package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ngetahun/bugzilla-mcp/internal/bugzilla"
	"github.com/ngetahun/bugzilla-mcp/internal/config"
)

// Input carries the caller-supplied filters of a bug search. Empty
// strings and non-positive ints mean "not supplied".
type Input struct {
	Product    string
	Component  string
	Status     string
	Priority   string
	Severity   string
	AssignedTo string
	Creator    string
	Limit      int
	Offset     int
}

// Parameters is the canonical outgoing parameter set. Filters the caller
// did not supply are omitted entirely, never sent empty.
type Parameters struct {
	Product    string `json:"product,omitempty"`
	Component  string `json:"component,omitempty"`
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Severity   string `json:"severity,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Creator    string `json:"creator,omitempty"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// Values converts p into URL query parameters for the REST call,
// skipping omitted filters.
func (p Parameters) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("product", p.Product)
	set("component", p.Component)
	set("status", p.Status)
	set("priority", p.Priority)
	set("severity", p.Severity)
	set("assigned_to", p.AssignedTo)
	set("creator", p.Creator)
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	return v
}

// BuildParameters turns caller input into the canonical parameter set.
// The limit falls back to the configured default and is always capped at
// config.MaxLimit. Negative offsets are clamped to zero; Bugzilla would
// reject them server-side, clamping keeps the failure local.
func BuildParameters(in Input, d config.QueryDefaults) Parameters {
	limit := in.Limit
	if limit <= 0 {
		limit = d.Limit
	}
	if limit > config.MaxLimit {
		limit = config.MaxLimit
	}

	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	return Parameters{
		Product:    in.Product,
		Component:  in.Component,
		Status:     in.Status,
		Priority:   in.Priority,
		Severity:   in.Severity,
		AssignedTo: in.AssignedTo,
		Creator:    in.Creator,
		Limit:      limit,
		Offset:     offset,
	}
}

// Result is one page of normalized search results. TotalResults counts
// the records in this page only, not the server-side total of all
// matching bugs.
type Result struct {
	TotalResults int                  `json:"total_results"`
	Offset       int                  `json:"offset"`
	Limit        int                  `json:"limit"`
	Parameters   Parameters           `json:"query_parameters"`
	Bugs         []bugzilla.BugRecord `json:"bugs"`
}

// QueryError reports a failed search together with the parameters that
// were sent, so the caller can echo them back.
type QueryError struct {
	Params Parameters
	Err    error
}

func (e *QueryError) Error() string { return fmt.Sprintf("Query failed: %v", e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }

// Runner executes canonical bug searches against the tracker.
type Runner struct {
	searcher bugzilla.Searcher
	webURL   func(id int) string
	defaults config.QueryDefaults
}

// NewRunner returns a Runner bound to a searcher and an immutable set of
// query defaults. webURL derives the browser link for a bug id.
func NewRunner(searcher bugzilla.Searcher, webURL func(id int) string, defaults config.QueryDefaults) *Runner {
	return &Runner{
		searcher: searcher,
		webURL:   webURL,
		defaults: defaults,
	}
}

// Defaults returns the paging defaults the runner was built with.
func (r *Runner) Defaults() config.QueryDefaults { return r.defaults }

// Query builds the canonical parameter set from in and executes it. Any
// failure during execution or normalization is returned as a *QueryError
// carrying the assembled parameters, never as a bare error.
func (r *Runner) Query(ctx context.Context, in Input) (*Result, error) {
	params := BuildParameters(in, r.defaults)

	bugs, err := r.searcher.SearchBugs(ctx, params.Values())
	if err != nil {
		return nil, &QueryError{Params: params, Err: err}
	}

	records := make([]bugzilla.BugRecord, 0, len(bugs))
	for i := range bugs {
		record, err := bugzilla.Normalize(&bugs[i], r.webURL(bugs[i].ID))
		if err != nil {
			return nil, &QueryError{Params: params, Err: err}
		}
		records = append(records, record)
	}

	return &Result{
		TotalResults: len(records),
		Offset:       params.Offset,
		Limit:        params.Limit,
		Parameters:   params,
		Bugs:         records,
	}, nil
}
