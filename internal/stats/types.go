package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/bidwatch-kr/backend/internal/contract"
)

// Validation errors reported to the caller as client errors.
var (
	ErrNoCompanies = errors.New("at least one company name is required")
)

// Query is one batch analysis request: which companies, over which window,
// anchored on which date, optionally filtered by contract-name keywords.
type Query struct {
	Companies       []string        `json:"companies"`
	Period          contract.Period `json:"period"`
	Mode            contract.Mode   `json:"mode"`
	IncludeKeywords []string        `json:"include_keywords"`
	ExcludeKeywords []string        `json:"exclude_keywords"`
}

// Validate applies the input-error taxonomy: missing companies and a
// missing/invalid period are client errors, nothing is silently defaulted
// except the analysis mode (empty means order).
func (q *Query) Validate() error {
	if len(q.Companies) == 0 {
		return ErrNoCompanies
	}
	for _, name := range q.Companies {
		if name == "" {
			return fmt.Errorf("company names must not be empty")
		}
	}
	if err := q.Period.Validate(); err != nil {
		return err
	}
	mode, err := contract.ParseMode(string(q.Mode))
	if err != nil {
		return err
	}
	q.Mode = mode
	return nil
}

// PartnerShare is one roster entry attached to a joint contract for display.
type PartnerShare struct {
	Name       string  `json:"name"`
	ShareRatio float64 `json:"share_ratio"`
}

// Attribution is the read view over one contract as it counts for one
// company: resolved stake, resolved joint type and role, the amount it
// contributes, and enough detail (contract numbers, exclusion reason) for a
// caller to audit or override the exclusion rule.
type Attribution struct {
	ContractNos        []string       `json:"contract_nos"`
	ContractName       string         `json:"contract_name"`
	Organization       string         `json:"organization"`
	PrimeContractor    string         `json:"prime_contractor"`
	ContractDate       *time.Time     `json:"contract_date"`
	StartDate          *time.Time     `json:"start_date"`
	EndDate            *time.Time     `json:"end_date"`
	PeriodText         string         `json:"contract_period"`
	Amount             int64          `json:"amount"`
	ShareRatio         float64        `json:"share_ratio"`
	AttributedAmount   float64        `json:"attributed_amount"`
	JointType          string         `json:"joint_type,omitempty"`
	PartnerRole        string         `json:"partner_role"`
	IsJoint            bool           `json:"is_joint_contract"`
	Excluded           bool           `json:"excluded"`
	ExclusionReason    string         `json:"exclusion_reason,omitempty"`
	IsModifiedContract bool           `json:"is_modified_contract"`
	Partners           []PartnerShare `json:"partners"`
	DetailURL          string         `json:"detail_url,omitempty"`
}

// YearlyStat is one effective-year bucket. Excluded contracts stay in the
// list for transparency but never contribute to Count or TotalAmount.
type YearlyStat struct {
	Year        int           `json:"year"`
	Count       int           `json:"count"`
	TotalAmount float64       `json:"total_amount"`
	Contracts   []Attribution `json:"contracts"`
}

// CompanyStats is one company's aggregated result. A company with no
// matching activity has zero totals and an empty (never nil) yearly list.
// Error is set when the store lookup for this company failed, so callers
// can tell "no activity" from "lookup failed".
type CompanyStats struct {
	CompanyName string       `json:"company_name"`
	TotalCount  int          `json:"total_count"`
	TotalAmount float64      `json:"total_amount"`
	Yearly      []YearlyStat `json:"yearly_data"`
	Error       string       `json:"error,omitempty"`
}
