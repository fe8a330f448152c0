package stats

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// defaultConcurrency bounds how many companies of one batch hit the store at
// once. Per-company results are independent, so the loop parallelizes safely.
const defaultConcurrency = 4

// Engine computes company-level order/revenue statistics from the contract
// store. It holds no cross-request state: every call recomputes from the
// store, so identical queries against an unchanged store return identical
// results.
type Engine struct {
	store       contract.Store
	logger      *logger.Logger
	concurrency int

	// now is injectable for deterministic effective-year fallbacks in tests
	now func() time.Time
}

// NewEngine creates a new aggregation engine
func NewEngine(store contract.Store, log *logger.Logger) *Engine {
	return &Engine{
		store:       store,
		logger:      log,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
}

// BatchStats runs one retrieval+aggregation pass per requested company.
// Results come back in request order regardless of completion order, and a
// store failure for one company becomes that company's error entry instead
// of failing the batch.
func (e *Engine) BatchStats(ctx context.Context, q Query) ([]CompanyStats, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	results := make([]CompanyStats, len(q.Companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, company := range q.Companies {
		g.Go(func() error {
			results[i] = e.companyStats(gctx, company, q)
			return nil
		})
	}
	// Goroutines never return errors; per-company failures are isolated
	// into the result entries.
	_ = g.Wait()

	return results, nil
}

// companyStats retrieves, attributes and aggregates one company's contracts.
func (e *Engine) companyStats(ctx context.Context, company string, q Query) CompanyStats {
	rows, err := e.store.FindContracts(ctx, contract.ContractQuery{
		Company:         company,
		Period:          q.Period,
		Mode:            q.Mode,
		IncludeKeywords: q.IncludeKeywords,
		ExcludeKeywords: q.ExcludeKeywords,
	})
	if err != nil {
		e.logger.WithError(err).WithField("company", company).Error("Contract retrieval failed")
		return CompanyStats{
			CompanyName: company,
			Yearly:      []YearlyStat{},
			Error:       "contract lookup failed",
		}
	}

	// One batch roster fetch for all canonical contract numbers. A roster
	// failure degrades to empty rosters (sole-contractor defaults) but
	// never fails the company.
	nos := make([]string, 0, len(rows))
	for i := range rows {
		if no := rows[i].CanonicalNo(); no != "" {
			nos = append(nos, no)
		}
	}
	rosters, err := e.store.PartnersByContract(ctx, nos)
	if err != nil {
		e.logger.WithError(err).WithField("company", company).Warn("Partner roster fetch failed, continuing with empty rosters")
		rosters = map[string][]contract.Partner{}
	}

	return e.aggregate(company, rows, rosters, q.Mode)
}

// aggregate buckets attributed contracts by effective year and computes
// totals by re-summing the non-excluded detail rows, so totals are always
// reproducible from the contract lists.
func (e *Engine) aggregate(company string, rows []contract.Contract, rosters map[string][]contract.Partner, mode contract.Mode) CompanyStats {
	now := e.now()
	buckets := make(map[int]*YearlyStat)

	for i := range rows {
		c := &rows[i]
		att := e.attribute(c, rosters[c.CanonicalNo()], company, mode, now)

		year := contract.EffectiveYear(c, mode, now)
		bucket, ok := buckets[year]
		if !ok {
			bucket = &YearlyStat{Year: year, Contracts: []Attribution{}}
			buckets[year] = bucket
		}
		bucket.Contracts = append(bucket.Contracts, att)
	}

	result := CompanyStats{
		CompanyName: company,
		Yearly:      make([]YearlyStat, 0, len(buckets)),
	}

	years := make([]int, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	for _, year := range years {
		bucket := buckets[year]
		for i := range bucket.Contracts {
			if bucket.Contracts[i].Excluded {
				continue
			}
			bucket.Count++
			bucket.TotalAmount += bucket.Contracts[i].AttributedAmount
		}
		result.TotalCount += bucket.Count
		result.TotalAmount += bucket.TotalAmount
		result.Yearly = append(result.Yearly, *bucket)
	}

	return result
}

// attribute resolves one contract's stake, role, amount and flags for the
// queried company.
func (e *Engine) attribute(c *contract.Contract, roster []contract.Partner, company string, mode contract.Mode, now time.Time) Attribution {
	ratio := contract.ResolveShareRatio(roster, company)
	jointType := contract.ResolveJointType(roster)
	amount := contract.ResolveAmount(c, mode)

	att := Attribution{
		ContractNos:        c.ContractNos,
		ContractName:       c.Name,
		Organization:       c.Organization,
		PrimeContractor:    c.PrimeContractor,
		ContractDate:       c.ContractDate,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		PeriodText:         c.PeriodText,
		Amount:             amount,
		ShareRatio:         ratio,
		AttributedAmount:   float64(amount) * ratio / 100,
		JointType:          jointType,
		PartnerRole:        contract.ResolvePartnerRole(c, roster, company),
		IsJoint:            contract.IsJoint(roster),
		IsModifiedContract: contract.IsModified(c),
		Partners:           []PartnerShare{},
	}
	att.DetailURL = c.DetailURL

	// 분담이행: contractually separated scopes are recorded for audit but
	// never counted toward any participant's totals.
	if jointType == contract.DividedExecution {
		att.Excluded = true
		att.ExclusionReason = "분담이행 계약은 집계에서 제외"
	}

	if att.IsJoint {
		att.Partners = rosterShares(roster)
	}

	return att
}

// rosterShares converts a roster to display entries sorted by share ratio
// descending. The store already orders rosters this way; sorting again keeps
// the contract independent of the fetch path.
func rosterShares(roster []contract.Partner) []PartnerShare {
	shares := make([]PartnerShare, len(roster))
	for i, p := range roster {
		shares[i] = PartnerShare{Name: p.Name, ShareRatio: p.ShareRatio}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].ShareRatio > shares[j].ShareRatio
	})
	return shares
}
