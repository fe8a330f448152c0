package contract

import (
	"fmt"
	"time"
)

// Joint venture execution types as stored in contract_partners.joint_type.
// 공동이행은 지분 합산 대상, 분담이행은 집계 제외 대상.
const (
	JointExecution   = "공동이행"
	DividedExecution = "분담이행"
)

// Partner role labels synthesized when the roster carries no partner_type.
const (
	RolePrime  = "대표사"
	RoleMember = "공동수급체 구성원"
)

// Mode selects which date anchors the analysis window and the effective year.
type Mode string

const (
	// ModeOrder aggregates by order intake (contract/start date)
	ModeOrder Mode = "order"
	// ModeRevenue aggregates by revenue recognition (completion date)
	ModeRevenue Mode = "revenue"
)

// ParseMode parses a mode string; the empty string defaults to order mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeOrder):
		return ModeOrder, nil
	case string(ModeRevenue):
		return ModeRevenue, nil
	default:
		return "", fmt.Errorf("unknown analysis mode %q (valid: order, revenue)", s)
	}
}

// Contract is one logical contract from the scraped store. Physically
// duplicated rows (same name + contract date + organization + prime
// contractor) are merged during retrieval; ContractNos keeps every
// underlying contract number and the first entry is the canonical one.
type Contract struct {
	ContractNos     []string   `json:"contract_nos"`
	Name            string     `json:"contract_name"`
	Amount          *int64     `json:"contract_amount"`
	TotalAmount     *int64     `json:"total_contract_amount"`
	ContractDate    *time.Time `json:"contract_date"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	PeriodText      string     `json:"contract_period"`
	Organization    string     `json:"organization"`
	PrimeContractor string     `json:"prime_contractor"`
	DetailURL       string     `json:"detail_url"`
}

// CanonicalNo returns the contract number joint-ness and rosters are keyed
// by. Merged duplicates share one canonical number so partner rows are never
// counted more than once per logical contract.
func (c *Contract) CanonicalNo() string {
	if len(c.ContractNos) == 0 {
		return ""
	}
	return c.ContractNos[0]
}

// Partner is one joint-venture participant row for a contract.
type Partner struct {
	ContractNo  string  `json:"contract_no"`
	Name        string  `json:"partner_name"`
	ShareRatio  float64 `json:"share_ratio"` // percentage points, 0-100
	PartnerType string  `json:"partner_type"`
	JointType   string  `json:"joint_type"`
}

// Period is an inclusive calendar window. Bounds are rendered as DATE
// literals, so the upper bound must be a real calendar day.
type Period struct {
	StartYear  int `json:"start_year"`
	StartMonth int `json:"start_month"`
	EndYear    int `json:"end_year"`
	EndMonth   int `json:"end_month"`
}

// Validate rejects incomplete or inverted windows. The core never defaults a
// missing window to the current year; callers that want that supply it.
func (p Period) Validate() error {
	if p.StartYear == 0 || p.StartMonth == 0 || p.EndYear == 0 || p.EndMonth == 0 {
		return fmt.Errorf("period requires start_year, start_month, end_year, end_month")
	}
	if p.StartMonth < 1 || p.StartMonth > 12 || p.EndMonth < 1 || p.EndMonth > 12 {
		return fmt.Errorf("period months must be 1-12")
	}
	if p.EndYear < p.StartYear || (p.EndYear == p.StartYear && p.EndMonth < p.StartMonth) {
		return fmt.Errorf("period end must not precede start")
	}
	return nil
}

// LowerBound returns the window start as a DATE literal
func (p Period) LowerBound() string {
	return fmt.Sprintf("%04d-%02d-01", p.StartYear, p.StartMonth)
}

// UpperBound returns the window end as a DATE literal: the last day of
// EndMonth. Day zero of the following month normalizes to it, so short
// months and leap years need no special casing.
func (p Period) UpperBound() string {
	last := time.Date(p.EndYear, time.Month(p.EndMonth)+1, 0, 0, 0, 0, 0, time.UTC)
	return last.Format("2006-01-02")
}

// ContractQuery describes one company's retrieval pass.
type ContractQuery struct {
	Company         string
	Period          Period
	Mode            Mode
	IncludeKeywords []string
	ExcludeKeywords []string
}

// ListQuery is a paginated browse over the deduplicated store.
type ListQuery struct {
	Company string
	Keyword string
	Page    int
	Size    int
}

// ListedContract is a listing row with roster-derived display fields.
type ListedContract struct {
	Contract
	PartnerCount int  `json:"partner_count"`
	IsJoint      bool `json:"is_joint_contract"`
}

// ListPage is one page of the contracts listing.
type ListPage struct {
	Items []ListedContract `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

// FreshnessReport describes how current the scraped store is.
type FreshnessReport struct {
	TotalContracts     int64      `json:"total_contracts"`
	TotalPartnerRows   int64      `json:"total_partner_rows"`
	LatestContractDate *time.Time `json:"latest_contract_date"`
}
