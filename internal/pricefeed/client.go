package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/httputil"
	"github.com/witchakorn/stockarena/pkg/logger"
	"github.com/witchakorn/stockarena/pkg/redis"
)

// Feed resolves current market prices with caching and a scrape fallback
// ⭐ SSOT: 시세 조회는 이 피드에서만
// Resolution order: cache → REST API → HTML scrape.
type Feed struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache
	limiter    *rate.Limiter

	baseURL       string
	apiKey        string
	scrapeBaseURL string
	cacheTTL      time.Duration
}

var _ contracts.PriceFeed = (*Feed)(nil)

// NewFeed creates a price feed from config. cache may be nil when Redis
// is disabled.
func NewFeed(httpClient *httputil.Client, cfg *config.Config, cache *redis.Cache, log *logger.Logger) *Feed {
	return &Feed{
		httpClient:    httpClient,
		logger:        log,
		cache:         cache,
		limiter:       rate.NewLimiter(rate.Limit(cfg.PriceFeed.RequestsPerSec), 1),
		baseURL:       strings.TrimRight(cfg.PriceFeed.BaseURL, "/"),
		apiKey:        cfg.PriceFeed.APIKey,
		scrapeBaseURL: strings.TrimRight(cfg.PriceFeed.ScrapeBaseURL, "/"),
		cacheTTL:      cfg.PriceFeed.CacheTTL,
	}
}

// Price returns the current price for the ticker.
// 실패 시 항상 ErrPriceUnavailable로 래핑
func (f *Feed) Price(ctx context.Context, ticker string) (float64, error) {
	if ticker == "" {
		return 0, fmt.Errorf("%w: empty ticker", contracts.ErrPriceUnavailable)
	}

	if price, ok := f.cachedPrice(ctx, ticker); ok {
		return price, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %s: rate limit: %v", contracts.ErrPriceUnavailable, ticker, err)
	}

	price, apiErr := f.fetchREST(ctx, ticker)
	if apiErr != nil {
		f.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  apiErr.Error(),
		}).Warn("Price API failed, falling back to scrape")

		var scrapeErr error
		price, scrapeErr = f.scrapePrice(ctx, ticker)
		if scrapeErr != nil {
			return 0, fmt.Errorf("%w: %s: api: %v; scrape: %v", contracts.ErrPriceUnavailable, ticker, apiErr, scrapeErr)
		}
	}

	if price <= 0 {
		return 0, fmt.Errorf("%w: %s: non-positive price %f", contracts.ErrPriceUnavailable, ticker, price)
	}

	f.storePrice(ctx, ticker, price)
	return price, nil
}

// quoteResponse is the REST quote payload; price arrives as a string
type quoteResponse struct {
	Price   string `json:"price"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

func (f *Feed) fetchREST(ctx context.Context, ticker string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("apikey", f.apiKey)

	fullURL := fmt.Sprintf("%s/price?%s", f.baseURL, params.Encode())

	resp, err := f.httpClient.Get(ctx, fullURL)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response body failed: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return 0, fmt.Errorf("parse response failed: %w", err)
	}
	if quote.Status == "error" {
		return 0, fmt.Errorf("API error: %s", quote.Message)
	}

	price, err := strconv.ParseFloat(quote.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", quote.Price, err)
	}
	return price, nil
}

func (f *Feed) cachedPrice(ctx context.Context, ticker string) (float64, bool) {
	if f.cache == nil {
		return 0, false
	}

	var price float64
	found, err := f.cache.Get(ctx, redis.QuoteKey(ticker), &price)
	if err != nil {
		f.logger.WithError(err).Warn("Quote cache read failed")
		return 0, false
	}
	return price, found && price > 0
}

// storePrice writes through to the cache; failures only log
func (f *Feed) storePrice(ctx context.Context, ticker string, price float64) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, redis.QuoteKey(ticker), price, f.cacheTTL); err != nil {
		f.logger.WithError(err).Warn("Quote cache write failed")
	}
}
