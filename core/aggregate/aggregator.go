// Package aggregate produces the consolidated, validity-filtered, ranked
// view of donor responses for a request.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lifeflow/bloodlink/core/geo"
	"github.com/lifeflow/bloodlink/core/logger"
	"github.com/lifeflow/bloodlink/core/store"
)

// FilterMode selects the response-time lower bound.
type FilterMode string

const (
	FilterAll          FilterMode = "all"
	FilterAfterRequest FilterMode = "after-request"
	FilterRecent       FilterMode = "recent"
)

// Filter is the caller-selected time window.
type Filter struct {
	Mode        FilterMode `json:"mode"`
	MaxAgeHours int        `json:"max_age_hours,omitempty"`
}

// FilterInfo reports the window that was actually applied.
type FilterInfo struct {
	Mode        FilterMode `json:"mode"`
	MaxAgeHours int        `json:"max_age_hours,omitempty"`
	Bound       time.Time  `json:"bound,omitempty"`
}

// Summary partitions the merged entries.
type Summary struct {
	Total      int `json:"total"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Structured int `json:"structured"`
	Legacy     int `json:"legacy"`
}

// View is the result of one aggregation read.
type View struct {
	Responses []Entry     `json:"responses"`
	Request   RequestInfo `json:"request_info"`
	Filter    FilterInfo  `json:"filter_info"`
	Summary   Summary     `json:"summary"`
}

// RequestInfo is the subset of the request echoed back to the caller.
type RequestInfo struct {
	ID         string    `json:"id"`
	BloodGroup string    `json:"blood_group"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Aggregator merges the response sources for a request.
type Aggregator struct {
	requests store.RequestStore
	sources  []Source
	ranker   *geo.Ranker
	logger   logger.Logger
	now      func() time.Time
}

// New creates an Aggregator over the given sources. Distances are computed
// against the ranker's fixed reference coordinate.
func New(requests store.RequestStore, ranker *geo.Ranker, log logger.Logger, sources ...Source) (*Aggregator, error) {
	if requests == nil || ranker == nil || len(sources) == 0 {
		return nil, fmt.Errorf("aggregate: nil parameter provided to New")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Aggregator{
		requests: requests,
		sources:  sources,
		ranker:   ranker,
		logger:   log,
		now:      time.Now,
	}, nil
}

// Responses returns the merged, annotated, sorted view for one request. The
// primary list holds only valid entries (response at or after the request)
// unless the "all" filter is selected, in which case earlier entries are
// included too; the summary reports both partitions either way. A degraded
// source is logged and skipped so the caller always gets a well-formed view.
func (a *Aggregator) Responses(ctx context.Context, requestID string, f Filter) (View, error) {
	req, err := a.requests.Get(ctx, requestID)
	if err != nil {
		return View{}, err
	}
	bound := a.bound(req.CreatedAt, f)

	var merged []Entry
	for _, src := range a.sources {
		entries, err := src.Responses(ctx, requestID, bound)
		if err != nil {
			a.logger.Errorf("response source failed for request %s: %v", requestID, err)
			continue
		}
		merged = append(merged, entries...)
	}

	summary := Summary{Total: len(merged)}
	var valid, invalid []Entry
	for i := range merged {
		a.annotate(&merged[i], req.CreatedAt)
		switch merged[i].Source {
		case SourceStructured:
			summary.Structured++
		case SourceLegacy:
			summary.Legacy++
		}
		if merged[i].TimeSinceRequestMin >= 0 {
			valid = append(valid, merged[i])
		} else {
			invalid = append(invalid, merged[i])
		}
	}
	summary.Valid = len(valid)
	summary.Invalid = len(invalid)

	primary := valid
	if f.Mode == FilterAll {
		primary = append(valid, invalid...)
	}
	sortByTimeDesc(primary)

	return View{
		Responses: primary,
		Request: RequestInfo{
			ID:         req.ID,
			BloodGroup: string(req.BloodGroup),
			Status:     string(req.Status),
			CreatedAt:  req.CreatedAt,
		},
		Filter:  FilterInfo{Mode: f.Mode, MaxAgeHours: f.MaxAgeHours, Bound: bound},
		Summary: summary,
	}, nil
}

// Locations returns every known location from all sources, with no time
// filter and no request scoping, annotated with matched blood group and
// distance only.
func (a *Aggregator) Locations(ctx context.Context) ([]Entry, error) {
	var merged []Entry
	for _, src := range a.sources {
		entries, err := src.All(ctx)
		if err != nil {
			a.logger.Errorf("location source failed: %v", err)
			continue
		}
		merged = append(merged, entries...)
	}
	for i := range merged {
		rank := a.ranker.Rank(geo.Point{Lat: merged[i].Latitude, Lng: merged[i].Longitude})
		merged[i].DistanceKm = rank.DistanceKm
		merged[i].Near = rank.Near
	}
	sortByTimeDesc(merged)
	return merged, nil
}

// bound computes the response-time lower bound for the filter mode.
func (a *Aggregator) bound(createdAt time.Time, f Filter) time.Time {
	switch f.Mode {
	case FilterAfterRequest:
		return createdAt
	case FilterRecent:
		cutoff := a.now().Add(-time.Duration(f.MaxAgeHours) * time.Hour)
		if createdAt.After(cutoff) {
			return createdAt
		}
		return cutoff
	default:
		return time.Time{}
	}
}

func (a *Aggregator) annotate(e *Entry, createdAt time.Time) {
	e.TimeSinceRequestMin = e.ResponseTime.Sub(createdAt).Minutes()
	rank := a.ranker.Rank(geo.Point{Lat: e.Latitude, Lng: e.Longitude})
	e.DistanceKm = rank.DistanceKm
	e.Near = rank.Near
}

func sortByTimeDesc(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ResponseTime.After(entries[j].ResponseTime)
	})
}
