// Package blood decides whether a donor can satisfy a request for a given
// blood group. The table is recipient-centric: receives[G] is the set of
// donor groups a request for G accepts, following standard transfusion
// rules. AB+ accepts all eight groups, O- accepts only O-.
package blood

import "github.com/lifeflow/bloodlink/core/model"

var receives = map[model.BloodGroup][]model.BloodGroup{
	"O-":  {"O-"},
	"O+":  {"O+", "O-"},
	"A-":  {"A-", "O-"},
	"A+":  {"A+", "A-", "O+", "O-"},
	"B-":  {"B-", "O-"},
	"B+":  {"B+", "B-", "O+", "O-"},
	"AB-": {"AB-", "A-", "B-", "O-"},
	"AB+": {"AB+", "AB-", "A+", "A-", "B+", "B-", "O+", "O-"},
}

// Compatible reports whether a donor of group donor can satisfy a request
// for group requested. Both inputs are normalized before lookup. Unknown or
// malformed groups are incompatible, never an error: callers silently
// exclude such donors and must not fail the enclosing operation.
func Compatible(requested, donor model.BloodGroup) bool {
	set, ok := receives[model.NormalizeGroup(string(requested))]
	if !ok {
		return false
	}
	d := model.NormalizeGroup(string(donor))
	for _, g := range set {
		if g == d {
			return true
		}
	}
	return false
}

// Known reports whether g normalizes to one of the eight canonical groups.
func Known(g model.BloodGroup) bool {
	_, ok := receives[model.NormalizeGroup(string(g))]
	return ok
}
