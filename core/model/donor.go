package model

import "strings"

// BloodGroup is a canonical blood group such as "A+" or "O-". Values are
// normalized once at the registry boundary; downstream packages only ever
// see the canonical form.
type BloodGroup string

// GroupUnknown marks a donor whose blood group could not be resolved. It is
// incompatible with every specific request but still visible in "all" views.
const GroupUnknown BloodGroup = "Unknown"

// Groups lists the eight canonical blood groups.
var Groups = []BloodGroup{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// NormalizeGroup strips all whitespace and uppercases the input. It does not
// validate the result; unknown groups are handled by the compatibility table.
func NormalizeGroup(s string) BloodGroup {
	return BloodGroup(strings.ToUpper(strings.Join(strings.Fields(s), "")))
}

// Donor is one entry of the donor registry. The registry is read-only from
// this service's perspective.
type Donor struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	BloodGroup BloodGroup `json:"blood_group"`
	RollNo     string     `json:"roll_no,omitempty"`
	Email      string     `json:"email,omitempty"`
}

// HasPhone reports whether the donor can be reached by SMS. Donors without a
// phone number are skipped during dispatch, not counted as failures.
func (d Donor) HasPhone() bool {
	return strings.TrimSpace(d.Phone) != ""
}
