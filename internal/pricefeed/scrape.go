package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// scrapePrice extracts the quoted price from the finance page markup.
// REST API 실패 시에만 호출되는 최후 수단
func (f *Feed) scrapePrice(ctx context.Context, ticker string) (float64, error) {
	fullURL := fmt.Sprintf("%s/%s", f.scrapeBaseURL, ticker)

	resp, err := f.httpClient.Get(ctx, fullURL)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse HTML failed: %w", err)
	}

	price, err := extractPrice(doc, ticker)
	if err != nil {
		return 0, err
	}

	f.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"price":  price,
	}).Debug("Scraped price")
	return price, nil
}

// extractPrice finds the live price node for the ticker
func extractPrice(doc *goquery.Document, ticker string) (float64, error) {
	selector := fmt.Sprintf(`fin-streamer[data-field="regularMarketPrice"][data-symbol=%q]`, ticker)

	node := doc.Find(selector).First()
	if node.Length() == 0 {
		// Some page variants omit the symbol attribute.
		node = doc.Find(`fin-streamer[data-field="regularMarketPrice"]`).First()
	}
	if node.Length() == 0 {
		return 0, fmt.Errorf("price element not found")
	}

	raw, ok := node.Attr("data-value")
	if !ok || raw == "" {
		raw = strings.TrimSpace(node.Text())
	}
	raw = strings.ReplaceAll(raw, ",", "")

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price text %q: %w", raw, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %f", price)
	}
	return price, nil
}
