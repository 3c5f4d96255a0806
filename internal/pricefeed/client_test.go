package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/httputil"
	"github.com/witchakorn/stockarena/pkg/logger"
)

func testFeed(t *testing.T, apiURL, scrapeURL string) *Feed {
	t.Helper()
	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	cfg.PriceFeed.BaseURL = apiURL
	cfg.PriceFeed.APIKey = "test-key"
	cfg.PriceFeed.ScrapeBaseURL = scrapeURL
	cfg.PriceFeed.RequestsPerSec = 1000

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()
	return NewFeed(httpClient, cfg, nil, log)
}

func quotePage(ticker string, price float64) string {
	return fmt.Sprintf(
		`<html><body><fin-streamer data-field="regularMarketPrice" data-symbol="%s" data-value="%.2f">%.2f</fin-streamer></body></html>`,
		ticker, price, price,
	)
}

func TestPriceFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{"price":"227.48"}`)
	}))
	defer server.Close()

	feed := testFeed(t, server.URL, server.URL+"/quote")
	price, err := feed.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 227.48, price)
}

func TestPriceScrapeFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"quota exhausted"}`)
	})
	mux.HandleFunc("/quote/NVDA", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quotePage("NVDA", 187.52))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	feed := testFeed(t, server.URL, server.URL+"/quote")
	price, err := feed.Price(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 187.52, price)
}

func TestPriceBothSourcesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	feed := testFeed(t, server.URL, server.URL+"/quote")
	_, err := feed.Price(context.Background(), "GONE")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrPriceUnavailable)
}

func TestPriceRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-numeric price", `{"price":"n/a"}`},
		{"zero price", `{"price":"0"}`},
		{"negative price", `{"price":"-5.20"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			// Scrape path also unavailable.
			server := httptest.NewServer(mux)
			defer server.Close()

			feed := testFeed(t, server.URL, server.URL+"/quote")
			_, err := feed.Price(context.Background(), "TSLA")
			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrPriceUnavailable)
		})
	}
}

func TestPriceEmptyTicker(t *testing.T) {
	feed := testFeed(t, "http://127.0.0.1:0", "http://127.0.0.1:0")
	_, err := feed.Price(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrPriceUnavailable)
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		ticker  string
		want    float64
		wantErr bool
	}{
		{
			name:   "data-value attribute",
			html:   quotePage("AAPL", 227.48),
			ticker: "AAPL",
			want:   227.48,
		},
		{
			name:   "text content with thousands separator",
			html:   `<fin-streamer data-field="regularMarketPrice">1,234.56</fin-streamer>`,
			ticker: "BRK-A",
			want:   1234.56,
		},
		{
			name:    "missing element",
			html:    `<html><body><p>no quote here</p></body></html>`,
			ticker:  "AAPL",
			wantErr: true,
		},
		{
			name:    "garbage text",
			html:    `<fin-streamer data-field="regularMarketPrice">--</fin-streamer>`,
			ticker:  "AAPL",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			got, err := extractPrice(doc, tt.ticker)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
