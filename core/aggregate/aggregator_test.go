package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lifeflow/bloodlink/core/geo"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/core/store"
	"github.com/lifeflow/bloodlink/infra/store/memory"
)

var (
	t0        = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reference = geo.Point{Lat: 28.6139, Lng: 77.2090}
)

type fixture struct {
	agg   *Aggregator
	resps *memory.ResponseStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := memory.NewRegistry([]model.Donor{
		{ID: "d1", Name: "Jane Doe", Phone: "98765 43210", BloodGroup: "A+"},
		{ID: "d2", Name: "Ravi Kumar", Phone: "9123456780", BloodGroup: "O-"},
	})
	reqs := memory.NewRequestStore()
	_ = reqs.Create(context.Background(), model.BloodRequest{
		ID: "r1", BloodGroup: "A+", Status: model.StatusPending, CreatedAt: t0,
	})
	resps := memory.NewResponseStore()
	_ = resps.Create(context.Background(), model.LocationResponse{
		ID: "s1", DonorID: "d1", RequestID: "r1",
		Latitude: 28.62, Longitude: 77.21, IsAvailable: true,
		ResponseTime: t0.Add(10 * time.Second),
	})
	legacy := memory.NewLegacyStore([]model.LegacyLocation{
		{UserName: "ravi kumar", MobileNumber: "9123 456 780",
			Latitude: 28.70, Longitude: 77.40, Timestamp: t0.Add(-time.Second)},
	})
	agg, err := New(reqs, geo.NewRanker(reference), nil,
		NewStructuredSource(resps, reg), NewLegacySource(legacy, reg))
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	return fixture{agg: agg, resps: resps}
}

func TestResponsesAfterRequest(t *testing.T) {
	f := newFixture(t)
	view, err := f.agg.Responses(context.Background(), "r1", Filter{Mode: FilterAfterRequest})
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(view.Responses) != 1 {
		t.Fatalf("expected exactly the structured response, got %d entries", len(view.Responses))
	}
	e := view.Responses[0]
	if e.Source != SourceStructured || e.DonorID != "d1" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.BloodGroup != "A+" {
		t.Errorf("entry must carry the donor's current group, got %s", e.BloodGroup)
	}
	if e.TimeSinceRequestMin <= 0 {
		t.Errorf("expected positive time since request, got %v", e.TimeSinceRequestMin)
	}
	if !e.Near {
		t.Errorf("responder %.2f km away should rank near", e.DistanceKm)
	}
}

func TestResponsesAllIncludesInvalid(t *testing.T) {
	f := newFixture(t)
	view, err := f.agg.Responses(context.Background(), "r1", Filter{Mode: FilterAll})
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(view.Responses) != 2 {
		t.Fatalf("all filter must include the pre-request record, got %d", len(view.Responses))
	}
	// Most recent first.
	if view.Responses[0].Source != SourceStructured || view.Responses[1].Source != SourceLegacy {
		t.Fatalf("wrong sort order: %+v", view.Responses)
	}
	if view.Responses[1].TimeSinceRequestMin >= 0 {
		t.Error("legacy record predates the request, expected negative time since request")
	}
	s := view.Summary
	if s.Total != 2 || s.Valid != 1 || s.Invalid != 1 || s.Structured != 1 || s.Legacy != 1 {
		t.Fatalf("summary %+v", s)
	}
}

func TestResponsesLegacyIdentityEnrichment(t *testing.T) {
	f := newFixture(t)
	view, err := f.agg.Responses(context.Background(), "r1", Filter{Mode: FilterAll})
	if err != nil {
		t.Fatal(err)
	}
	legacy := view.Responses[1]
	if legacy.DonorID != "d2" || legacy.BloodGroup != "O-" {
		t.Fatalf("legacy record should resolve to d2/O-, got %+v", legacy)
	}
	if legacy.Near {
		t.Errorf("legacy responder %.1f km away should rank far", legacy.DistanceKm)
	}
}

func TestResponsesRecentWindow(t *testing.T) {
	f := newFixture(t)
	f.agg.now = func() time.Time { return t0.Add(48 * time.Hour) }

	// Only responses from the last hour: the t0+10s response is too old.
	view, err := f.agg.Responses(context.Background(), "r1", Filter{Mode: FilterRecent, MaxAgeHours: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Responses) != 0 || view.Summary.Total != 0 {
		t.Fatalf("expected empty window, got %+v", view.Summary)
	}
	if got := view.Filter.Bound; !got.Equal(t0.Add(47 * time.Hour)) {
		t.Errorf("bound = %v", got)
	}

	// A generous window clamps to the request creation time.
	view, err = f.agg.Responses(context.Background(), "r1", Filter{Mode: FilterRecent, MaxAgeHours: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !view.Filter.Bound.Equal(t0) {
		t.Errorf("bound must clamp to request creation, got %v", view.Filter.Bound)
	}
	if len(view.Responses) != 1 {
		t.Fatalf("expected the structured response, got %d", len(view.Responses))
	}
}

func TestResponsesUnknownRequest(t *testing.T) {
	f := newFixture(t)
	if _, err := f.agg.Responses(context.Background(), "nope", Filter{Mode: FilterAll}); !errors.Is(err, store.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestResponsesDegradedSourceStillWellFormed(t *testing.T) {
	reg := memory.NewRegistry(nil)
	reqs := memory.NewRequestStore()
	_ = reqs.Create(context.Background(), model.BloodRequest{ID: "r1", CreatedAt: t0})
	agg, err := New(reqs, geo.NewRanker(reference), nil,
		failingSource{}, NewStructuredSource(memory.NewResponseStore(), reg))
	if err != nil {
		t.Fatal(err)
	}
	view, err := agg.Responses(context.Background(), "r1", Filter{Mode: FilterAll})
	if err != nil {
		t.Fatalf("degraded source must not fail the read: %v", err)
	}
	if len(view.Responses) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(view.Responses))
	}
	if view.Summary.Total != 0 {
		t.Fatalf("summary %+v", view.Summary)
	}
}

func TestLocations(t *testing.T) {
	f := newFixture(t)
	entries, err := f.agg.Locations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both sources merged, got %d", len(entries))
	}
	for _, e := range entries {
		if e.DistanceKm == 0 {
			t.Errorf("entry missing distance annotation: %+v", e)
		}
	}
	if !entries[0].ResponseTime.After(entries[1].ResponseTime) {
		t.Error("locations must sort most recent first")
	}
}

type failingSource struct{}

func (failingSource) Responses(context.Context, string, time.Time) ([]Entry, error) {
	return nil, store.ErrUnavailable
}
func (failingSource) All(context.Context) ([]Entry, error) { return nil, store.ErrUnavailable }
