package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/bidwatch-kr/backend/pkg/database"
)

// Store is the contract-store access surface the aggregation engine and the
// API handlers consume.
type Store interface {
	// FindContracts returns every logical contract in which the company
	// appears as prime contractor or joint-venture partner, within the
	// mode-dependent date window. Empty result is a valid answer.
	FindContracts(ctx context.Context, q ContractQuery) ([]Contract, error)

	// PartnersByContract batch-fetches partner rosters for the given
	// contract numbers in one round trip, each roster sorted by share
	// ratio descending.
	PartnersByContract(ctx context.Context, nos []string) (map[string][]Partner, error)

	// ListContracts pages through the deduplicated store for browsing.
	ListContracts(ctx context.Context, q ListQuery) (*ListPage, error)

	// Freshness reports how current the scraped store is.
	Freshness(ctx context.Context) (*FreshnessReport, error)
}

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool database.Pool
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(pool database.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// contractColumns is the grouped projection shared by retrieval and listing.
// Duplicate physical rows of one logical contract are collapsed here: MAX for
// amount and date fields guards against partially updated duplicates, and
// array_agg keeps every underlying contract number with the canonical
// (minimum) number first.
const contractColumns = `
		array_agg(DISTINCT c.contract_no ORDER BY c.contract_no) AS contract_nos,
		c.contract_name,
		MAX(c.contract_amount) AS contract_amount,
		MAX(c.total_contract_amount) AS total_contract_amount,
		c.contract_date,
		MAX(c.start_date) AS start_date,
		MAX(c.end_date) AS end_date,
		COALESCE(MAX(c.contract_period), '') AS contract_period,
		c.organization,
		c.prime_contractor,
		COALESCE(MAX(c.detail_url), '') AS detail_url`

// FindContracts retrieves and deduplicates one company's contracts.
func (s *PostgresStore) FindContracts(ctx context.Context, q ContractQuery) ([]Contract, error) {
	var sb strings.Builder
	args := []any{"%" + q.Company + "%", q.Period.LowerBound(), q.Period.UpperBound()}

	sb.WriteString(`
	SELECT` + contractColumns + `
	FROM contracts c
	WHERE (c.prime_contractor ILIKE $1
		OR EXISTS (
			SELECT 1 FROM contract_partners p
			WHERE p.contract_no = c.contract_no AND p.partner_name ILIKE $1
		))`)

	// 수주 분석은 계약일 또는 착수일, 매출 분석은 준공일 기준
	if q.Mode == ModeRevenue {
		sb.WriteString(`
		AND c.end_date BETWEEN $2 AND $3`)
	} else {
		sb.WriteString(`
		AND (c.contract_date BETWEEN $2 AND $3 OR c.start_date BETWEEN $2 AND $3)`)
	}

	// Keyword filters: include is OR, exclude is AND-NOT
	if len(q.IncludeKeywords) > 0 {
		conds := make([]string, 0, len(q.IncludeKeywords))
		for _, kw := range q.IncludeKeywords {
			args = append(args, "%"+kw+"%")
			conds = append(conds, fmt.Sprintf("c.contract_name ILIKE $%d", len(args)))
		}
		sb.WriteString("\n\t\tAND (" + strings.Join(conds, " OR ") + ")")
	}
	for _, kw := range q.ExcludeKeywords {
		args = append(args, "%"+kw+"%")
		sb.WriteString(fmt.Sprintf("\n\t\tAND c.contract_name NOT ILIKE $%d", len(args)))
	}

	sb.WriteString(`
	GROUP BY c.contract_name, c.contract_date, c.organization, c.prime_contractor
	ORDER BY c.contract_date DESC NULLS LAST`)

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query company contracts: %w", err)
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(
			&c.ContractNos,
			&c.Name,
			&c.Amount,
			&c.TotalAmount,
			&c.ContractDate,
			&c.StartDate,
			&c.EndDate,
			&c.PeriodText,
			&c.Organization,
			&c.PrimeContractor,
			&c.DetailURL,
		); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, nil
}

// PartnersByContract fetches all rosters for the given canonical contract
// numbers in one query.
func (s *PostgresStore) PartnersByContract(ctx context.Context, nos []string) (map[string][]Partner, error) {
	rosters := make(map[string][]Partner, len(nos))
	if len(nos) == 0 {
		return rosters, nil
	}

	query := `
	SELECT
		contract_no,
		partner_name,
		COALESCE(share_ratio, 0) AS share_ratio,
		COALESCE(partner_type, '') AS partner_type,
		COALESCE(joint_type, '') AS joint_type
	FROM contract_partners
	WHERE contract_no = ANY($1)
	ORDER BY contract_no, share_ratio DESC NULLS LAST`

	rows, err := s.pool.Query(ctx, query, nos)
	if err != nil {
		return nil, fmt.Errorf("query contract partners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ContractNo, &p.Name, &p.ShareRatio, &p.PartnerType, &p.JointType); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		rosters[p.ContractNo] = append(rosters[p.ContractNo], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", err)
	}

	return rosters, nil
}

// ListContracts pages through the deduplicated store. Joint-ness is derived
// from the canonical contract number's roster, never from the merged
// contract-number array.
func (s *PostgresStore) ListContracts(ctx context.Context, q ListQuery) (*ListPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > 100 {
		q.Size = 20
	}

	var where []string
	var args []any
	if q.Company != "" {
		args = append(args, "%"+q.Company+"%")
		where = append(where, fmt.Sprintf(`(c.prime_contractor ILIKE $%d
			OR EXISTS (
				SELECT 1 FROM contract_partners p
				WHERE p.contract_no = c.contract_no AND p.partner_name ILIKE $%d
			))`, len(args), len(args)))
	}
	if q.Keyword != "" {
		args = append(args, "%"+q.Keyword+"%")
		where = append(where, fmt.Sprintf("c.contract_name ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "\n\tWHERE " + strings.Join(where, "\n\t\tAND ")
	}

	groupBy := `
	GROUP BY c.contract_name, c.contract_date, c.organization, c.prime_contractor`

	countQuery := `
	SELECT COUNT(*) FROM (
		SELECT 1
		FROM contracts c` + whereClause + groupBy + `
	) grouped`

	var total int64
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}

	listArgs := append(args, q.Size, (q.Page-1)*q.Size)
	listQuery := `
	SELECT` + contractColumns + `,
		(SELECT COUNT(*) FROM contract_partners p WHERE p.contract_no = MIN(c.contract_no)) AS partner_count
	FROM contracts c` + whereClause + groupBy + `
	ORDER BY c.contract_date DESC NULLS LAST` + fmt.Sprintf(`
	LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	page := &ListPage{
		Items: []ListedContract{},
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
	}
	for rows.Next() {
		var lc ListedContract
		if err := rows.Scan(
			&lc.ContractNos,
			&lc.Name,
			&lc.Amount,
			&lc.TotalAmount,
			&lc.ContractDate,
			&lc.StartDate,
			&lc.EndDate,
			&lc.PeriodText,
			&lc.Organization,
			&lc.PrimeContractor,
			&lc.DetailURL,
			&lc.PartnerCount,
		); err != nil {
			return nil, fmt.Errorf("scan listed contract: %w", err)
		}
		lc.IsJoint = lc.PartnerCount > 1
		page.Items = append(page.Items, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listed contracts: %w", err)
	}

	return page, nil
}

// Freshness reports row counts and the newest contract date in the store.
func (s *PostgresStore) Freshness(ctx context.Context) (*FreshnessReport, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM contracts),
		(SELECT COUNT(*) FROM contract_partners),
		(SELECT MAX(contract_date) FROM contracts)`

	report := &FreshnessReport{}
	err := s.pool.QueryRow(ctx, query).Scan(
		&report.TotalContracts,
		&report.TotalPartnerRows,
		&report.LatestContractDate,
	)
	if err != nil {
		return nil, fmt.Errorf("query store freshness: %w", err)
	}

	return report, nil
}
