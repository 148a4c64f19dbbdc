package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock-compare/internal/model"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Marketstack v1 API root. The free plan is HTTP only.
	DefaultBaseURL = "http://api.marketstack.com/v1"

	// DefaultPageLimit is the largest page Marketstack serves.
	DefaultPageLimit = 1000

	DefaultMaxPages  = 20
	DefaultRateLimit = 5
	DefaultTimeout   = 30 * time.Second
)

// MarketstackClient fetches end-of-day data from the Marketstack API.
type MarketstackClient struct {
	APIKey    string
	BaseURL   string
	PageLimit int
	MaxPages  int
	Client    *http.Client

	limiter *rate.Limiter
	cache   *ResponseCache
	logger  *zap.Logger
}

// ClientOption configures a MarketstackClient.
type ClientOption func(*MarketstackClient)

// WithBaseURL overrides the API root (used by tests and proxies).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *MarketstackClient) {
		if baseURL != "" {
			c.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *MarketstackClient) {
		c.Client = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond int) ClientOption {
	return func(c *MarketstackClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// WithPaging sets the page size and the maximum number of pages followed per query.
func WithPaging(limit, maxPages int) ClientOption {
	return func(c *MarketstackClient) {
		if limit > 0 {
			c.PageLimit = limit
		}
		if maxPages > 0 {
			c.MaxPages = maxPages
		}
	}
}

// WithCache enables response caching. A nil cache disables it.
func WithCache(cache *ResponseCache) ClientOption {
	return func(c *MarketstackClient) {
		c.cache = cache
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *MarketstackClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewMarketstackClient creates a new Marketstack API client.
func NewMarketstackClient(apiKey string, opts ...ClientOption) *MarketstackClient {
	c := &MarketstackClient{
		APIKey:    apiKey,
		BaseURL:   DefaultBaseURL,
		PageLimit: DefaultPageLimit,
		MaxPages:  DefaultMaxPages,
		Client: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EODQuery defines parameters for querying end-of-day data.
type EODQuery struct {
	Symbols  []string
	DateFrom time.Time
	DateTo   time.Time
}

// MarketstackError represents a failed upstream call. It is the "fetch failed" signal
// callers translate into HTTP responses.
type MarketstackError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *MarketstackError) Error() string {
	return e.Message
}

// upstreamError is the error envelope Marketstack returns on failure.
type upstreamError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchEOD fetches every EOD record for the query, following pagination.
func (c *MarketstackClient) FetchEOD(ctx context.Context, q EODQuery) ([]model.EODRecord, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}
	if len(q.Symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	if q.DateFrom.IsZero() || q.DateTo.IsZero() {
		return nil, fmt.Errorf("date_from and date_to are required")
	}
	if q.DateFrom.After(q.DateTo) {
		return nil, fmt.Errorf("date_from must be before date_to")
	}

	key := GenerateCacheKey(q)
	if cached, found := c.cache.Get(key); found {
		c.logger.Debug("marketstack cache hit",
			zap.Strings("symbols", q.Symbols),
			zap.Int("records", len(cached)))
		return cached, nil
	}

	var out []model.EODRecord
	for page, offset := 0, 0; page < c.MaxPages; page++ {
		resp, err := c.fetchEODPage(ctx, q, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Data...)

		offset += resp.Pagination.Count
		if resp.Pagination.Count == 0 || offset >= resp.Pagination.Total {
			break
		}
		if page == c.MaxPages-1 {
			c.logger.Warn("marketstack page cap reached, result truncated",
				zap.Int("max_pages", c.MaxPages),
				zap.Int("fetched", offset),
				zap.Int("total", resp.Pagination.Total))
		}
	}

	c.cache.Set(key, out)
	return out, nil
}

// FetchEODPage fetches a single raw page, for callers that proxy the upstream shape.
func (c *MarketstackClient) FetchEODPage(ctx context.Context, q EODQuery, offset int) (*model.MarketstackEODResponse, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}
	return c.fetchEODPage(ctx, q, offset)
}

func (c *MarketstackClient) fetchEODPage(ctx context.Context, q EODQuery, offset int) (*model.MarketstackEODResponse, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(q.Symbols, ","))
	params.Set("date_from", q.DateFrom.Format("2006-01-02"))
	params.Set("date_to", q.DateTo.Format("2006-01-02"))
	params.Set("limit", strconv.Itoa(c.PageLimit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("sort", "ASC")

	var result model.MarketstackEODResponse
	if err := c.get(ctx, "/eod", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTickers searches the Marketstack ticker list.
func (c *MarketstackClient) ListTickers(ctx context.Context, search string, limit int) ([]model.Ticker, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var result model.MarketstackTickersResponse
	if err := c.get(ctx, "/tickers", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *MarketstackClient) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("access_key", c.APIKey)
	u := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// The access key is never logged.
	logParams := url.Values{}
	for k, v := range params {
		if k != "access_key" {
			logParams[k] = v
		}
	}
	c.logger.Info("marketstack request", zap.String("path", path), zap.String("query", logParams.Encode()))

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("marketstack request failed", zap.String("path", path), zap.Duration("duration", duration), zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Info("marketstack response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError maps a non-200 response to a MarketstackError.
func (c *MarketstackClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env upstreamError
	_ = json.Unmarshal(body, &env)

	e := &MarketstackError{StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Code = "UNAUTHORIZED"
		e.Message = "Unauthorized: invalid or restricted API key"
	case http.StatusTooManyRequests:
		e.RetryAfter = resp.Header.Get("Retry-After")
		e.Code = "RATE_LIMIT_EXCEEDED"
		e.Message = fmt.Sprintf("Rate limit exceeded. Retry after: %s", e.RetryAfter)
	default:
		e.Code = "API_ERROR"
		e.Message = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status)
	}
	if env.Error.Code != "" {
		e.Code = strings.ToUpper(env.Error.Code)
	}
	if env.Error.Message != "" {
		e.Message = env.Error.Message
	}
	c.logger.Warn("marketstack error",
		zap.Int("status", e.StatusCode),
		zap.String("code", e.Code),
		zap.String("message", e.Message))
	return e
}

func (c *MarketstackClient) validateAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &MarketstackError{
			Code:    "MISSING_API_KEY",
			Message: "Marketstack API key is not configured",
		}
	}
	return nil
}

// AsMarketstackError unwraps err into a *MarketstackError when it is one.
func AsMarketstackError(err error) (*MarketstackError, bool) {
	var msErr *MarketstackError
	if errors.As(err, &msErr) {
		return msErr, true
	}
	return nil, false
}
