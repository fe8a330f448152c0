package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bidwatch-kr/backend/pkg/logger"
)

// QuotaLimiter tracks daily call quotas for external API service keys.
// 공공데이터포털 서비스키는 일일 트래픽 한도가 있어 호출 수를 공유 저장소에서 관리한다.
// Redis가 비활성화된 경우 모든 호출을 허용한다 (단일 인스턴스 가정).
type QuotaLimiter struct {
	client *Client
	prefix string
	logger *logger.Logger
}

// NewQuotaLimiter creates a new quota limiter
func NewQuotaLimiter(client *Client, prefix string, log *logger.Logger) *QuotaLimiter {
	return &QuotaLimiter{
		client: client,
		prefix: prefix,
		logger: log,
	}
}

// Allow consumes one call against the named key's daily quota.
// Returns (allowed, used, error). The counter resets at midnight KST
// because that is when the 공공데이터포털 resets service-key quotas.
func (q *QuotaLimiter) Allow(ctx context.Context, key string, dailyLimit int) (bool, int, error) {
	if !q.client.Enabled() {
		return true, 0, nil
	}

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	fullKey := fmt.Sprintf("%s:quota:%s:%s", q.prefix, key, now.Format("2006-01-02"))

	rdb := q.client.Redis()

	used, err := rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("quota incr failed: %w", err)
	}

	// The expiry is re-set on every call: a failed ExpireAt would otherwise
	// leave the day's counter key without a TTL permanently.
	if err := rdb.ExpireAt(ctx, fullKey, nextReset(now)).Err(); err != nil {
		q.logger.WithError(err).WithField("key", fullKey).Warn("Quota expiry set failed")
	}

	if int(used) > dailyLimit {
		return false, int(used), nil
	}

	return true, int(used), nil
}

// nextReset returns the upcoming midnight in the counter's timezone.
func nextReset(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
