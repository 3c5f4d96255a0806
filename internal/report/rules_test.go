package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witchakorn/stockarena/internal/contracts"
)

func TestRuleBestConfidenceRange(t *testing.T) {
	rep := &contracts.ChallengeReport{
		ConfidenceAnalysis: []contracts.ConfidenceBucket{
			{Range: "0%-50%", Predictions: 4, Correct: 1, Accuracy: 25},
			{Range: "70%-85%", Predictions: 8, Correct: 6, Accuracy: 75},
		},
	}

	msg, ok := ruleBestConfidenceRange(rep)
	require.True(t, ok)
	assert.Contains(t, msg, "70%-85%")
	assert.Contains(t, msg, "75.0%")
}

func TestRuleBestConfidenceRangeThinBestBucket(t *testing.T) {
	// The rule tracks the single most accurate bucket. When that bucket
	// is thin it stays silent instead of falling back to a runner-up.
	rep := &contracts.ChallengeReport{
		ConfidenceAnalysis: []contracts.ConfidenceBucket{
			{Range: "0%-50%", Predictions: 2, Correct: 2, Accuracy: 100},
			{Range: "70%-85%", Predictions: 8, Correct: 6, Accuracy: 75},
		},
	}

	_, ok := ruleBestConfidenceRange(rep)
	assert.False(t, ok)
}

func TestRuleBestConfidenceRangeNeedsSamples(t *testing.T) {
	rep := &contracts.ChallengeReport{
		ConfidenceAnalysis: []contracts.ConfidenceBucket{
			{Range: "85%-100%", Predictions: 5, Correct: 5, Accuracy: 100},
		},
	}

	_, ok := ruleBestConfidenceRange(rep)
	assert.False(t, ok, "5 samples is not more than 5")
}

func TestRuleDirectionalBias(t *testing.T) {
	tests := []struct {
		name     string
		up, down float64
		fires    bool
		contains string
	}{
		{"up dominates", 80, 60, true, "buy-side"},
		{"down dominates", 50, 70, true, "sell-side"},
		{"gap exactly 15", 75, 60, false, ""},
		{"balanced", 65, 60, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &contracts.ChallengeReport{
				DirectionalAccuracy: contracts.DirectionalAccuracy{
					UpAccuracy:   tt.up,
					DownAccuracy: tt.down,
				},
			}

			msg, ok := ruleDirectionalBias(rep)
			assert.Equal(t, tt.fires, ok)
			if tt.fires {
				assert.Contains(t, msg, tt.contains)
			}
		})
	}
}

func TestRuleFavorableAndHighRiskStocks(t *testing.T) {
	rep := &contracts.ChallengeReport{
		BestPredictedStocks: []contracts.TickerAccuracy{
			{Ticker: "NVDA", Accuracy: 90},
			{Ticker: "AAPL", Accuracy: 72},
			{Ticker: "KO", Accuracy: 55},
		},
		WorstPredictedStocks: []contracts.TickerAccuracy{
			{Ticker: "BA", Accuracy: 20},
			{Ticker: "INTC", Accuracy: 45},
		},
	}

	msg, ok := ruleFavorableStocks(rep)
	require.True(t, ok)
	assert.Contains(t, msg, "NVDA (90.0%)")
	assert.Contains(t, msg, "AAPL (72.0%)")
	assert.NotContains(t, msg, "KO")

	msg, ok = ruleHighRiskStocks(rep)
	require.True(t, ok)
	assert.Contains(t, msg, "BA (20.0%)")
	assert.NotContains(t, msg, "INTC")
}

func TestRulesDefaultMessage(t *testing.T) {
	rep := &contracts.ChallengeReport{}

	recommendations := applyRules(rep)
	assert.Equal(t, []string{insufficientDataMessage}, recommendations)
}

func TestRulesAreOrderStable(t *testing.T) {
	rep := &contracts.ChallengeReport{
		ConfidenceAnalysis: []contracts.ConfidenceBucket{
			{Range: "70%-85%", Predictions: 10, Correct: 8, Accuracy: 80},
		},
		DirectionalAccuracy: contracts.DirectionalAccuracy{UpAccuracy: 85, DownAccuracy: 40},
		BestPredictedStocks: []contracts.TickerAccuracy{{Ticker: "MSFT", Accuracy: 88}},
		TrendSignal:         contracts.TrendImproving,
	}

	recommendations := applyRules(rep)
	require.Len(t, recommendations, 4)

	// Confidence, directional bias, favorable stocks, trend; in that order.
	assert.Contains(t, recommendations[0], "confidence range")
	assert.Contains(t, recommendations[1], "buy-side")
	assert.Contains(t, recommendations[2], "MSFT")
	assert.Contains(t, recommendations[3], "improving")
}
