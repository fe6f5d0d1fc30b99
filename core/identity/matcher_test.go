package identity

import (
	"testing"

	"github.com/lifeflow/bloodlink/core/model"
)

var registry = []model.Donor{
	{ID: "d2", Name: "Jane Doe", Phone: "98765 43210", BloodGroup: "A+"},
	{ID: "d1", Name: "Ravi Kumar", Phone: "9123456780", BloodGroup: "O-"},
	{ID: "d3", Name: "Jane Doe", Phone: "9000000000", BloodGroup: "B+"},
}

func TestMatchByPhone(t *testing.T) {
	m := NewMatcher(registry)
	got := m.Match(model.LegacyLocation{MobileNumber: "9876543210", UserName: "someone else"})
	if !got.Matched || got.Donor.ID != "d2" {
		t.Fatalf("expected phone match on d2, got %+v", got)
	}
	if got.BloodGroup != "A+" || got.Key != "d2" {
		t.Errorf("unexpected enrichment: %+v", got)
	}
}

func TestMatchPhoneBeatsName(t *testing.T) {
	m := NewMatcher(registry)
	// Phone points at d1 even though the name matches d2 and d3.
	got := m.Match(model.LegacyLocation{MobileNumber: " 9123 456 780 ", UserName: "jane doe"})
	if got.Donor.ID != "d1" {
		t.Fatalf("phone heuristic must win, got %+v", got)
	}
}

func TestMatchByNameFallback(t *testing.T) {
	m := NewMatcher(registry)
	got := m.Match(model.LegacyLocation{MobileNumber: "1111111111", UserName: " jane doe "})
	if !got.Matched {
		t.Fatal("expected name fallback match")
	}
	// d2 sorts before d3; iteration order is stable.
	if got.Donor.ID != "d2" {
		t.Errorf("expected deterministic first match d2, got %s", got.Donor.ID)
	}
}

func TestMatchUnknown(t *testing.T) {
	m := NewMatcher(registry)
	got := m.Match(model.LegacyLocation{MobileNumber: "5555", UserName: "Nobody"})
	if got.Matched {
		t.Fatalf("expected no match, got %+v", got)
	}
	if got.BloodGroup != model.GroupUnknown {
		t.Errorf("unmatched records report unknown group, got %s", got.BloodGroup)
	}
	if got.Key != "legacy:5555" {
		t.Errorf("unexpected dedup key %q", got.Key)
	}
}

func TestMatchEmptyFieldsNeverMatch(t *testing.T) {
	m := NewMatcher([]model.Donor{{ID: "d0", Name: "", Phone: ""}})
	got := m.Match(model.LegacyLocation{MobileNumber: "", UserName: ""})
	if got.Matched {
		t.Fatal("empty record must not match a donor with empty fields")
	}
}
