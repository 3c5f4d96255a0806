package challenge

import (
	"math/rand"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// PopularTickers is the default candidate pool for daily challenges
// 대형주 위주 25종목
var PopularTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META",
	"TSLA", "NVDA", "JPM", "V", "WMT",
	"DIS", "NFLX", "PYPL", "INTC", "AMD",
	"BA", "MCD", "KO", "PEP", "NKE",
	"SBUX", "CSCO", "ORCL", "IBM", "CRM",
}

// RandomSet picks a random set of tickers for one challenge from the pool
func RandomSet() []string {
	picked := make([]string, len(PopularTickers))
	copy(picked, PopularTickers)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:contracts.PredictionsPerChallenge]
}
