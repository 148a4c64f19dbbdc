package data

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"stock-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuery() EODQuery {
	return EODQuery{
		Symbols:  []string{"AAPL", "MSFT"},
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchEOD_Paginates(t *testing.T) {
	all := []model.EODRecord{
		{Symbol: "AAPL", Date: "2024-01-02T00:00:00+0000", AdjClose: model.Price(185.64)},
		{Symbol: "MSFT", Date: "2024-01-02T00:00:00+0000", AdjClose: model.Price(370.87)},
		{Symbol: "AAPL", Date: "2024-01-03T00:00:00+0000", AdjClose: nil},
	}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/eod", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret-key", q.Get("access_key"))
		assert.Equal(t, "AAPL,MSFT", q.Get("symbols"))
		assert.Equal(t, "2024-01-01", q.Get("date_from"))
		assert.Equal(t, "2024-01-31", q.Get("date_to"))
		assert.Equal(t, "ASC", q.Get("sort"))

		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		page := all[offset:end]
		_ = json.NewEncoder(w).Encode(model.MarketstackEODResponse{
			Pagination: model.Pagination{Limit: limit, Offset: offset, Count: len(page), Total: len(all)},
			Data:       page,
		})
	}))
	defer srv.Close()

	client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL), WithPaging(2, 10), WithRateLimit(100))
	got, err := client.FetchEOD(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, all, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchEOD_MaxPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.MarketstackEODResponse{
			Pagination: model.Pagination{Limit: 1, Count: 1, Total: 100},
			Data:       []model.EODRecord{{Symbol: "AAPL", Date: "2024-01-02"}},
		})
	}))
	defer srv.Close()

	client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL), WithPaging(1, 3), WithRateLimit(100))
	got, err := client.FetchEOD(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFetchEOD_Errors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		header   map[string]string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "invalid key with upstream envelope",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"code":"invalid_access_key","message":"You have not supplied a valid API Access Key."}}`,
			wantCode: "INVALID_ACCESS_KEY",
			wantMsg:  "You have not supplied a valid API Access Key.",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			header:   map[string]string{"Retry-After": "60"},
			wantCode: "RATE_LIMIT_EXCEEDED",
			wantMsg:  "Rate limit exceeded. Retry after: 60",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     "oops",
			wantCode: "API_ERROR",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL), WithRateLimit(100))
			_, err := client.FetchEOD(context.Background(), testQuery())
			msErr, ok := AsMarketstackError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tc.status, msErr.StatusCode)
			assert.Equal(t, tc.wantCode, msErr.Code)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, msErr.Message)
			}
		})
	}
}

func TestFetchEOD_MissingAPIKey(t *testing.T) {
	client := NewMarketstackClient("  ")
	_, err := client.FetchEOD(context.Background(), testQuery())
	msErr, ok := AsMarketstackError(err)
	require.True(t, ok)
	assert.Equal(t, "MISSING_API_KEY", msErr.Code)
}

func TestFetchEOD_InvalidQuery(t *testing.T) {
	client := NewMarketstackClient("secret-key")
	q := testQuery()
	q.DateFrom, q.DateTo = q.DateTo, q.DateFrom
	_, err := client.FetchEOD(context.Background(), q)
	require.Error(t, err)
	_, ok := AsMarketstackError(err)
	assert.False(t, ok)
}

func TestFetchEOD_UsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(model.MarketstackEODResponse{
			Pagination: model.Pagination{Count: 1, Total: 1},
			Data:       []model.EODRecord{{Symbol: "AAPL", Date: "2024-01-02"}},
		})
	}))
	defer srv.Close()

	cache := NewResponseCache(time.Minute)
	defer cache.Close()
	client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL), WithCache(cache), WithRateLimit(100))

	for i := 0; i < 3; i++ {
		got, err := client.FetchEOD(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchEOD_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL))
	_, err := client.FetchEOD(ctx, testQuery())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestListTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickers", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{"pagination":{"count":1,"total":1},"data":[{"name":"Apple Inc","symbol":"AAPL","stock_exchange":{"name":"NASDAQ Stock Exchange","acronym":"NASDAQ","mic":"XNAS"}}]}`))
	}))
	defer srv.Close()

	client := NewMarketstackClient("secret-key", WithBaseURL(srv.URL))
	tickers, err := client.ListTickers(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "AAPL", tickers[0].Symbol)
	assert.Equal(t, "XNAS", tickers[0].StockExchange.MIC)
}

func TestEODJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eod.json")
	records := []model.EODRecord{
		{Symbol: "AAPL", Date: "2024-01-02", AdjClose: model.Price(1)},
		{Symbol: "MSFT", Date: "2024-01-02"},
		{Symbol: "AAPL", Date: "2024-01-03", AdjClose: model.Price(2)},
	}
	require.NoError(t, SaveEODJSON(path, records))

	resp, err := LoadEODJSON(path)
	require.NoError(t, err)
	assert.Equal(t, records, resp.Data)
	assert.Equal(t, 3, resp.Pagination.Total)

	grouped := GroupBySymbol(resp)
	assert.Len(t, grouped["AAPL"], 2)
	assert.Len(t, grouped["MSFT"], 1)
	assert.Empty(t, GroupBySymbol(nil))
}

func TestGroupBySymbol_NormalizesCase(t *testing.T) {
	grouped := GroupBySymbol(&model.MarketstackEODResponse{Data: []model.EODRecord{
		{Symbol: "aapl", Date: "2024-01-02"},
		{Symbol: " AAPL ", Date: "2024-01-03"},
		{Symbol: "MSFT", Date: "2024-01-02"},
	}})
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["AAPL"], 2)
	assert.Len(t, grouped["MSFT"], 1)
}
