// Package identity reconciles legacy location records, which carry no
// foreign keys, against the donor registry using phone and name heuristics.
package identity

import (
	"sort"
	"strings"

	"github.com/lifeflow/bloodlink/core/model"
)

// Match is the outcome of resolving one legacy record.
type Match struct {
	// Donor is the matched registry entry; zero value when Matched is false.
	Donor model.Donor
	// BloodGroup is the matched donor's group, or GroupUnknown. Unknown
	// records stay visible in "all" views but never satisfy a specific
	// request.
	BloodGroup model.BloodGroup
	Matched    bool
	// Key identifies the responder for de-duplication against structured
	// responses: the donor ID when matched, otherwise derived from the raw
	// record.
	Key string
}

// Matcher resolves legacy records against a fixed registry snapshot. The
// snapshot is sorted by donor ID so results are deterministic regardless of
// the registry's own iteration order.
type Matcher struct {
	donors []model.Donor
}

// NewMatcher copies and sorts the registry snapshot.
func NewMatcher(donors []model.Donor) *Matcher {
	ds := make([]model.Donor, len(donors))
	copy(ds, donors)
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
	return &Matcher{donors: ds}
}

// Match finds the best-matching donor for rec. Heuristics apply in order,
// first match wins: exact phone match with all whitespace stripped from both
// sides, then case-insensitive whitespace-trimmed full-name match. A record
// matching no donor is still usable and reports GroupUnknown.
func (m *Matcher) Match(rec model.LegacyLocation) Match {
	if phone := stripSpaces(rec.MobileNumber); phone != "" {
		for _, d := range m.donors {
			if stripSpaces(d.Phone) == phone {
				return Match{Donor: d, BloodGroup: d.BloodGroup, Matched: true, Key: d.ID}
			}
		}
	}
	if name := normalizeName(rec.UserName); name != "" {
		for _, d := range m.donors {
			if normalizeName(d.Name) == name {
				return Match{Donor: d, BloodGroup: d.BloodGroup, Matched: true, Key: d.ID}
			}
		}
	}
	return Match{BloodGroup: model.GroupUnknown, Key: unknownKey(rec)}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// unknownKey builds a stable identifier for an unmatched record, preferring
// the mobile number over the name.
func unknownKey(rec model.LegacyLocation) string {
	if p := stripSpaces(rec.MobileNumber); p != "" {
		return "legacy:" + p
	}
	return "legacy:" + normalizeName(rec.UserName)
}
