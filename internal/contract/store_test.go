package contract

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func contractRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"contract_nos", "contract_name", "contract_amount", "total_contract_amount",
		"contract_date", "start_date", "end_date", "contract_period",
		"organization", "prime_contractor", "detail_url",
	})
}

func TestFindContractsOrderMode(t *testing.T) {
	store, mock := newMockStore(t)

	signed := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := contractRows().
		AddRow([]string{"C001", "C002"}, "도로 개량공사", won(100), won(150),
			&signed, date(2023, 1, 1), date(2024, 12, 31), "2023-01-01 ~ 2024-12-31",
			"서울시", "한화건설(주)", "https://example.com/C001").
		AddRow([]string{"C003"}, "하수처리장 증설", nil, nil,
			nil, nil, nil, "",
			"인천시", "한화건설(주)", "")

	mock.ExpectQuery(`OR c\.start_date BETWEEN`).
		WithArgs("%한화건설%", "2023-01-01", "2023-12-31").
		WillReturnRows(rows)

	got, err := store.FindContracts(context.Background(), ContractQuery{
		Company: "한화건설",
		Period:  Period{StartYear: 2023, StartMonth: 1, EndYear: 2023, EndMonth: 12},
		Mode:    ModeOrder,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"C001", "C002"}, got[0].ContractNos)
	assert.Equal(t, "C001", got[0].CanonicalNo())
	assert.Equal(t, int64(150), *got[0].TotalAmount)
	assert.Equal(t, "도로 개량공사", got[0].Name)

	assert.Nil(t, got[1].Amount)
	assert.Nil(t, got[1].ContractDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindContractsRevenueModeUsesEndDate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`AND c\.end_date BETWEEN`).
		WithArgs("%한화건설%", "2022-01-01", "2022-12-31").
		WillReturnRows(contractRows())

	got, err := store.FindContracts(context.Background(), ContractQuery{
		Company: "한화건설",
		Period:  Period{StartYear: 2022, StartMonth: 1, EndYear: 2022, EndMonth: 12},
		Mode:    ModeRevenue,
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindContractsShortEndMonth(t *testing.T) {
	store, mock := newMockStore(t)

	// 2월로 끝나는 윈도우도 실제 달력 날짜로 바인딩되어야 한다
	mock.ExpectQuery(`FROM contracts c`).
		WithArgs("%한화건설%", "2023-01-01", "2023-02-28").
		WillReturnRows(contractRows())

	_, err := store.FindContracts(context.Background(), ContractQuery{
		Company: "한화건설",
		Period:  Period{StartYear: 2023, StartMonth: 1, EndYear: 2023, EndMonth: 2},
		Mode:    ModeOrder,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindContractsKeywordFilters(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`NOT ILIKE \$6`).
		WithArgs("%한화건설%", "2023-01-01", "2023-12-31", "%도로%", "%교량%", "%유지보수%").
		WillReturnRows(contractRows())

	_, err := store.FindContracts(context.Background(), ContractQuery{
		Company:         "한화건설",
		Period:          Period{StartYear: 2023, StartMonth: 1, EndYear: 2023, EndMonth: 12},
		Mode:            ModeOrder,
		IncludeKeywords: []string{"도로", "교량"},
		ExcludeKeywords: []string{"유지보수"},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartnersByContract(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{
		"contract_no", "partner_name", "share_ratio", "partner_type", "joint_type",
	}).
		AddRow("C001", "대림산업(주)", 70.0, "", JointExecution).
		AddRow("C001", "한화건설(주)", 30.0, "", JointExecution).
		AddRow("C003", "한화건설(주)", 100.0, "대표사", "")

	mock.ExpectQuery(`FROM contract_partners`).
		WithArgs([]string{"C001", "C003"}).
		WillReturnRows(rows)

	rosters, err := store.PartnersByContract(context.Background(), []string{"C001", "C003"})
	require.NoError(t, err)
	require.Len(t, rosters, 2)

	require.Len(t, rosters["C001"], 2)
	assert.Equal(t, "대림산업(주)", rosters["C001"][0].Name)
	assert.Equal(t, 70.0, rosters["C001"][0].ShareRatio)
	assert.Equal(t, JointExecution, rosters["C001"][1].JointType)

	require.Len(t, rosters["C003"], 1)
	assert.Equal(t, "대표사", rosters["C003"][0].PartnerType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartnersByContractEmptyInput(t *testing.T) {
	store, mock := newMockStore(t)

	// No query fires for an empty batch
	rosters, err := store.PartnersByContract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rosters)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContracts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(`).
		WithArgs("%한화%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	signed := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	listRows := pgxmock.NewRows([]string{
		"contract_nos", "contract_name", "contract_amount", "total_contract_amount",
		"contract_date", "start_date", "end_date", "contract_period",
		"organization", "prime_contractor", "detail_url", "partner_count",
	}).
		AddRow([]string{"C001"}, "도로 개량공사", won(100), won(150),
			&signed, nil, nil, "", "서울시", "한화건설(주)", "", 2).
		AddRow([]string{"C005"}, "단독 공사", won(50), nil,
			&signed, nil, nil, "", "서울시", "한화건설(주)", "", 0)

	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs("%한화%", 10, 10).
		WillReturnRows(listRows)

	page, err := store.ListContracts(context.Background(), ListQuery{
		Company: "한화",
		Page:    2,
		Size:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Size)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].IsJoint)
	assert.False(t, page.Items[1].IsJoint)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContractsDefaultsPaging(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"contract_nos", "contract_name", "contract_amount", "total_contract_amount",
			"contract_date", "start_date", "end_date", "contract_period",
			"organization", "prime_contractor", "detail_url", "partner_count",
		}))

	page, err := store.ListContracts(context.Background(), ListQuery{Page: 0, Size: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Size)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFreshness(t *testing.T) {
	store, mock := newMockStore(t)

	latest := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`\(SELECT MAX\(contract_date\) FROM contracts\)`).
		WillReturnRows(pgxmock.NewRows([]string{"contracts", "partners", "latest"}).
			AddRow(int64(1200), int64(340), &latest))

	report, err := store.Freshness(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1200), report.TotalContracts)
	assert.Equal(t, int64(340), report.TotalPartnerRows)
	require.NotNil(t, report.LatestContractDate)
	assert.Equal(t, latest, *report.LatestContractDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFreshnessEmptyStore(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`\(SELECT MAX\(contract_date\) FROM contracts\)`).
		WillReturnRows(pgxmock.NewRows([]string{"contracts", "partners", "latest"}).
			AddRow(int64(0), int64(0), nil))

	report, err := store.Freshness(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.TotalContracts)
	assert.Nil(t, report.LatestContractDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}
