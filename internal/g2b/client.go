package g2b

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bidwatch-kr/backend/pkg/config"
	"github.com/bidwatch-kr/backend/pkg/httputil"
	"github.com/bidwatch-kr/backend/pkg/logger"
	"github.com/bidwatch-kr/backend/pkg/redis"
)

// ErrQuotaExceeded is returned when the service key's daily call quota is
// spent. The dashboard surfaces this instead of burning the key further.
var ErrQuotaExceeded = errors.New("g2b daily call quota exceeded")

// Client handles communication with the 나라장터 입찰공고 조회 API
// ⭐ SSOT: 공공데이터포털 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	serviceKey string
	baseURL    string
	dailyQuota int
	quota      *redis.QuotaLimiter
}

// NewClient creates a new procurement search API client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.G2BConfig, quota *redis.QuotaLimiter) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		serviceKey: cfg.ServiceKey,
		baseURL:    cfg.BaseURL,
		dailyQuota: cfg.DailyQuota,
		quota:      quota,
	}
}

// SearchQuery is one announcement search request.
type SearchQuery struct {
	Keyword string
	Page    int
	Size    int
}

// Announcement is one bid announcement reshaped for display: amounts come
// back both in raw won and in 억원.
type Announcement struct {
	NoticeNo        string  `json:"notice_no"`
	Name            string  `json:"name"`
	Organization    string  `json:"organization"`
	EstimatedPrice  int64   `json:"estimated_price"`
	EstimatedEokwon float64 `json:"estimated_price_eokwon"`
	NoticeDate      string  `json:"notice_date"`
	DetailURL       string  `json:"detail_url"`
}

// SearchResult is one page of announcements.
type SearchResult struct {
	Items []Announcement `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// apiEnvelope mirrors the 공공데이터포털 JSON response shape.
type apiEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items []struct {
				BidNtceNo     string `json:"bidNtceNo"`
				BidNtceNm     string `json:"bidNtceNm"`
				NtceInsttNm   string `json:"ntceInsttNm"`
				PresmptPrce   string `json:"presmptPrce"`
				BidNtceDt     string `json:"bidNtceDt"`
				BidNtceDtlURL string `json:"bidNtceDtlUrl"`
			} `json:"items"`
			TotalCount int `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// SearchAnnouncements queries the procurement API for bid announcements
// matching the keyword. This is a thin proxy: paging and unit conversion
// only, no local persistence.
func (c *Client) SearchAnnouncements(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > 100 {
		q.Size = 20
	}

	if c.quota != nil {
		allowed, used, err := c.quota.Allow(ctx, "g2b", c.dailyQuota)
		if err != nil {
			// Quota tracking is best-effort; a redis failure must not
			// take the proxy down.
			c.logger.WithError(err).Warn("Quota check failed, allowing request")
		} else if !allowed {
			c.logger.WithField("used", used).Warn("G2B daily quota exhausted")
			return nil, ErrQuotaExceeded
		}
	}

	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("type", "json")
	params.Set("pageNo", strconv.Itoa(q.Page))
	params.Set("numOfRows", strconv.Itoa(q.Size))
	if q.Keyword != "" {
		params.Set("bidNtceNm", q.Keyword)
	}

	resp, err := c.httpClient.GetWithParams(ctx, c.baseURL+"/getBidPblancListInfoCnstwkPPSSrch", params)
	if err != nil {
		return nil, fmt.Errorf("g2b request failed: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("g2b unexpected status code: %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("g2b response decode failed: %w", err)
	}
	if code := envelope.Response.Header.ResultCode; code != "" && code != "00" {
		return nil, fmt.Errorf("g2b API error %s: %s", code, envelope.Response.Header.ResultMsg)
	}

	result := &SearchResult{
		Items: make([]Announcement, 0, len(envelope.Response.Body.Items)),
		Total: envelope.Response.Body.TotalCount,
		Page:  q.Page,
		Size:  q.Size,
	}
	for _, item := range envelope.Response.Body.Items {
		price := parseWon(item.PresmptPrce)
		result.Items = append(result.Items, Announcement{
			NoticeNo:        item.BidNtceNo,
			Name:            item.BidNtceNm,
			Organization:    item.NtceInsttNm,
			EstimatedPrice:  price,
			EstimatedEokwon: Eokwon(price),
			NoticeDate:      item.BidNtceDt,
			DetailURL:       item.BidNtceDtlURL,
		})
	}

	return result, nil
}

// Eokwon converts won to 억원 (100 million won units) for display.
func Eokwon(won int64) float64 {
	return float64(won) / 1e8
}

// parseWon parses the API's stringly-typed amount fields; anything
// unparseable counts as zero.
func parseWon(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
