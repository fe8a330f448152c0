package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/bidwatch-kr/backend/internal/contract"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

// FreshnessJob monitors how current the scraped contract store is and warns
// when the newest contract date falls behind the configured threshold. The
// crawler itself lives outside this system; this job only watches its output.
type FreshnessJob struct {
	store     contract.Store
	logger    *logger.Logger
	schedule  string
	threshold time.Duration
}

// NewFreshnessJob creates a new freshness monitor job
func NewFreshnessJob(store contract.Store, log *logger.Logger, schedule string, threshold time.Duration) *FreshnessJob {
	return &FreshnessJob{
		store:     store,
		logger:    log,
		schedule:  schedule,
		threshold: threshold,
	}
}

// Name returns the job name
func (j *FreshnessJob) Name() string {
	return "store_freshness"
}

// Schedule returns the cron schedule expression
func (j *FreshnessJob) Schedule() string {
	return j.schedule
}

// Run probes the store and logs its freshness
func (j *FreshnessJob) Run(ctx context.Context) error {
	report, err := j.store.Freshness(ctx)
	if err != nil {
		return fmt.Errorf("freshness probe: %w", err)
	}

	fields := map[string]interface{}{
		"contracts":    report.TotalContracts,
		"partner_rows": report.TotalPartnerRows,
	}

	if report.LatestContractDate == nil {
		j.logger.WithFields(fields).Warn("Contract store is empty")
		return nil
	}

	age := time.Since(*report.LatestContractDate)
	fields["latest_contract_date"] = report.LatestContractDate.Format("2006-01-02")
	fields["age"] = age

	if age > j.threshold {
		j.logger.WithFields(fields).Warn("Contract store looks stale")
	} else {
		j.logger.WithFields(fields).Info("Contract store is fresh")
	}

	return nil
}
