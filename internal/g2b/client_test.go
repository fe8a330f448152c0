package g2b

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidwatch-kr/backend/pkg/config"
	"github.com/bidwatch-kr/backend/pkg/httputil"
	"github.com/bidwatch-kr/backend/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	log := testLogger(t)
	return NewClient(httputil.New(log).DisableRetry(), log, config.G2BConfig{
		ServiceKey: "test-key",
		BaseURL:    baseURL,
		DailyQuota: 10000,
	}, nil)
}

const sampleEnvelope = `{
	"response": {
		"header": {"resultCode": "00", "resultMsg": "정상"},
		"body": {
			"items": [
				{
					"bidNtceNo": "20240101-00",
					"bidNtceNm": "교량 보수공사",
					"ntceInsttNm": "서울특별시",
					"presmptPrce": "250000000",
					"bidNtceDt": "2024-01-01 10:00",
					"bidNtceDtlUrl": "https://example.com/20240101-00"
				},
				{
					"bidNtceNo": "20240102-00",
					"bidNtceNm": "도로 확장공사",
					"ntceInsttNm": "인천광역시",
					"presmptPrce": "",
					"bidNtceDt": "2024-01-02 10:00",
					"bidNtceDtlUrl": ""
				}
			],
			"totalCount": 2
		}
	}
}`

func TestSearchAnnouncements(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getBidPblancListInfoCnstwkPPSSrch", r.URL.Path)
		gotQuery = map[string]string{
			"serviceKey": r.URL.Query().Get("serviceKey"),
			"type":       r.URL.Query().Get("type"),
			"pageNo":     r.URL.Query().Get("pageNo"),
			"numOfRows":  r.URL.Query().Get("numOfRows"),
			"bidNtceNm":  r.URL.Query().Get("bidNtceNm"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleEnvelope))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.SearchAnnouncements(context.Background(), SearchQuery{
		Keyword: "교량",
		Page:    2,
		Size:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotQuery["serviceKey"])
	assert.Equal(t, "json", gotQuery["type"])
	assert.Equal(t, "2", gotQuery["pageNo"])
	assert.Equal(t, "10", gotQuery["numOfRows"])
	assert.Equal(t, "교량", gotQuery["bidNtceNm"])

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 10, result.Size)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, "20240101-00", first.NoticeNo)
	assert.Equal(t, "교량 보수공사", first.Name)
	assert.Equal(t, "서울특별시", first.Organization)
	assert.Equal(t, int64(250000000), first.EstimatedPrice)
	assert.Equal(t, 2.5, first.EstimatedEokwon)

	// 금액 누락은 0원으로
	assert.Zero(t, result.Items[1].EstimatedPrice)
}

func TestSearchAnnouncementsDefaultsPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pageNo"))
		assert.Equal(t, "20", r.URL.Query().Get("numOfRows"))
		assert.Empty(t, r.URL.Query().Get("bidNtceNm"))
		w.Write([]byte(`{"response": {"header": {"resultCode": "00"}, "body": {"items": [], "totalCount": 0}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result, err := client.SearchAnnouncements(context.Background(), SearchQuery{Page: 0, Size: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.Size)
	assert.Empty(t, result.Items)
}

func TestSearchAnnouncementsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": {"header": {"resultCode": "07", "resultMsg": "입력범위값 초과 에러"}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SearchAnnouncements(context.Background(), SearchQuery{Keyword: "교량"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "07")
}

func TestSearchAnnouncementsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SearchAnnouncements(context.Background(), SearchQuery{Keyword: "교량"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestParseWon(t *testing.T) {
	assert.Equal(t, int64(250000000), parseWon("250000000"))
	assert.Zero(t, parseWon(""))
	assert.Zero(t, parseWon("비공개"))
}

func TestEokwon(t *testing.T) {
	assert.Equal(t, 2.5, Eokwon(250000000))
	assert.Zero(t, Eokwon(0))
}
