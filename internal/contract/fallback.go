package contract

import (
	"strings"
	"time"
)

// Every optional-field default lives here as a named function so each
// fallback is documented and testable on its own instead of being an inline
// chain at the point of use.

// DefaultShareRatio is the stake assumed for a sole contractor with no
// partner roster entry.
const DefaultShareRatio = 100.0

// ResolveAmount picks the monetary figure a contract counts for, before the
// share ratio is applied. Order mode prefers the cumulative amended total;
// revenue mode always uses the current-period amount. Missing values count
// as zero.
func ResolveAmount(c *Contract, mode Mode) int64 {
	if mode == ModeOrder {
		if c.TotalAmount != nil {
			return *c.TotalAmount
		}
	}
	if c.Amount != nil {
		return *c.Amount
	}
	return 0
}

// EffectiveYear picks the calendar year a contract is attributed to.
// Order mode prefers the start date (work begun), falling back to the
// contract date; revenue mode always uses the contract date. When no date
// survives, the current year is the documented fallback.
func EffectiveYear(c *Contract, mode Mode, now time.Time) int {
	if mode == ModeOrder && c.StartDate != nil {
		return c.StartDate.Year()
	}
	if c.ContractDate != nil {
		return c.ContractDate.Year()
	}
	return now.Year()
}

// ResolveShareRatio finds the company's own percentage stake in the roster.
// A company absent from the roster is a sole contractor and gets the full
// 100% stake.
func ResolveShareRatio(roster []Partner, company string) float64 {
	for _, p := range roster {
		if nameMatches(p.Name, company) {
			return p.ShareRatio
		}
	}
	return DefaultShareRatio
}

// ResolveJointType pulls the joint-venture type from any roster row; the
// type is a contract-level attribute in current data. Empty when the
// contract has no roster (not a joint venture).
func ResolveJointType(roster []Partner) string {
	for _, p := range roster {
		if p.JointType != "" {
			return p.JointType
		}
	}
	return ""
}

// ResolvePartnerRole returns the company's role label: the roster's own
// partner_type when present, otherwise a synthesized label based on whether
// the company is the prime contractor.
func ResolvePartnerRole(c *Contract, roster []Partner, company string) string {
	for _, p := range roster {
		if nameMatches(p.Name, company) && p.PartnerType != "" {
			return p.PartnerType
		}
	}
	if nameMatches(c.PrimeContractor, company) {
		return RolePrime
	}
	return RoleMember
}

// IsJoint reports whether the contract has more than one roster participant.
func IsJoint(roster []Partner) bool {
	return len(roster) > 1
}

// IsModified reports whether the execution shifted across a year boundary
// after signing: both dates present and in different calendar years. Display
// advisory only, never affects totals.
func IsModified(c *Contract) bool {
	if c.StartDate == nil || c.ContractDate == nil {
		return false
	}
	return c.StartDate.Year() != c.ContractDate.Year()
}

// nameMatches is the single company-name match rule: the queried name as a
// case-insensitive substring of the stored name, mirroring the ILIKE pattern
// the store queries use. "한화" matches "한화건설(주)".
func nameMatches(stored, queried string) bool {
	if stored == "" || queried == "" {
		return false
	}
	return strings.Contains(strings.ToLower(stored), strings.ToLower(queried))
}
