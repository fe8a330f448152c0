package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/internal/stats"
	"github.com/bidwatch-kr/backend/pkg/config"
	"github.com/bidwatch-kr/backend/pkg/database"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "업체별 수주/매출 집계 실행",
	Long: `지정한 업체들의 연도별 수주 또는 매출 통계를 계산해 출력합니다.

기간을 지정하지 않으면 현재 연도(1월~12월)를 사용합니다.
(집계 엔진 자체는 기간 기본값을 갖지 않으며, 기본값 주입은 이 명령어의 몫)

Example:
  go run ./cmd/bidwatch stats --company 한화건설
  go run ./cmd/bidwatch stats --company 한화건설,대림산업 --from 2022-01 --to 2023-12 --mode revenue
  go run ./cmd/bidwatch stats --company 한화건설 --include 도로,교량 --exclude 유지보수`,
	RunE: runStats,
}

var (
	statsCompanies string
	statsFrom      string
	statsTo        string
	statsMode      string
	statsInclude   string
	statsExclude   string
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsCompanies, "company", "", "업체명 (콤마 구분, 필수)")
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "시작 연월 (YYYY-MM)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "종료 연월 (YYYY-MM)")
	statsCmd.Flags().StringVar(&statsMode, "mode", "order", "분석 기준 (order|revenue)")
	statsCmd.Flags().StringVar(&statsInclude, "include", "", "포함 키워드 (콤마 구분)")
	statsCmd.Flags().StringVar(&statsExclude, "exclude", "", "제외 키워드 (콤마 구분)")
	_ = statsCmd.MarkFlagRequired("company")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	period, err := resolvePeriod(statsFrom, statsTo)
	if err != nil {
		return err
	}

	query := stats.Query{
		Companies:       splitList(statsCompanies),
		Period:          period,
		Mode:            contract.Mode(statsMode),
		IncludeKeywords: splitList(statsInclude),
		ExcludeKeywords: splitList(statsExclude),
	}

	store := contract.NewPostgresStore(db.Pool)
	engine := stats.NewEngine(store, log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	results, err := engine.BatchStats(ctx, query)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}

	for _, company := range results {
		fmt.Printf("\n=== %s ===\n", company.CompanyName)
		if company.Error != "" {
			fmt.Printf("  ⚠️  조회 실패: %s\n", company.Error)
			continue
		}
		fmt.Printf("  총 %d건, %.0f원 (%.2f억원)\n",
			company.TotalCount, company.TotalAmount, company.TotalAmount/1e8)

		for _, year := range company.Yearly {
			fmt.Printf("  [%d] %d건, %.2f억원\n", year.Year, year.Count, year.TotalAmount/1e8)
			for _, c := range year.Contracts {
				marker := " "
				if c.Excluded {
					marker = "x"
				}
				fmt.Printf("    %s %s | %s | 지분 %.1f%% | %.2f억원\n",
					marker, c.ContractName, c.Organization, c.ShareRatio, c.AttributedAmount/1e8)
			}
		}
	}

	return nil
}

// resolvePeriod parses --from/--to, defaulting to the current calendar year.
// The default lives here at the calling layer; the engine requires an
// explicit window.
func resolvePeriod(from, to string) (contract.Period, error) {
	now := time.Now()
	period := contract.Period{
		StartYear:  now.Year(),
		StartMonth: 1,
		EndYear:    now.Year(),
		EndMonth:   12,
	}

	if from != "" {
		t, err := time.Parse("2006-01", from)
		if err != nil {
			return contract.Period{}, fmt.Errorf("invalid --from (expected YYYY-MM): %w", err)
		}
		period.StartYear = t.Year()
		period.StartMonth = int(t.Month())
	}
	if to != "" {
		t, err := time.Parse("2006-01", to)
		if err != nil {
			return contract.Period{}, fmt.Errorf("invalid --to (expected YYYY-MM): %w", err)
		}
		period.EndYear = t.Year()
		period.EndMonth = int(t.Month())
	}

	return period, nil
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
