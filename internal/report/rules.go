package report

import (
	"fmt"
	"strings"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// rule is one independent recommendation predicate. Rules never see each
// other's output; only their evaluation order is fixed.
type rule func(r *contracts.ChallengeReport) (string, bool)

// recommendationRules 평가 순서 고정, 규칙 간 독립
var recommendationRules = []rule{
	ruleBestConfidenceRange,
	ruleDirectionalBias,
	ruleFavorableStocks,
	ruleHighRiskStocks,
	ruleAccuracyTrend,
}

const insufficientDataMessage = "not enough verified history for specific recommendations yet; keep verifying daily challenges"

// applyRules evaluates every rule in order and collects fired messages.
// 아무 규칙도 발화하지 않으면 기본 메시지 1건
func applyRules(r *contracts.ChallengeReport) []string {
	recommendations := make([]string, 0, len(recommendationRules))
	for _, apply := range recommendationRules {
		if msg, ok := apply(r); ok {
			recommendations = append(recommendations, msg)
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, insufficientDataMessage)
	}
	return recommendations
}

func rangeLabel(min, max int) string {
	return fmt.Sprintf("%d%%-%d%%", min, max)
}

// ruleBestConfidenceRange highlights the best-calibrated confidence range
// when it carries more than 5 samples
func ruleBestConfidenceRange(r *contracts.ChallengeReport) (string, bool) {
	var best *contracts.ConfidenceBucket
	for i := range r.ConfidenceAnalysis {
		b := &r.ConfidenceAnalysis[i]
		if best == nil || b.Accuracy > best.Accuracy {
			best = b
		}
	}
	if best == nil || best.Predictions <= 5 {
		return "", false
	}
	return fmt.Sprintf(
		"highest accuracy (%.1f%%) falls in the %s confidence range; weight predictions in this range more heavily",
		best.Accuracy, best.Range,
	), true
}

// ruleDirectionalBias fires when one direction outperforms the other by
// more than 15 points
func ruleDirectionalBias(r *contracts.ChallengeReport) (string, bool) {
	da := r.DirectionalAccuracy
	switch {
	case da.UpAccuracy > da.DownAccuracy+15:
		return fmt.Sprintf(
			"upward calls are markedly more accurate (%.1f%% vs %.1f%%); weight buy-side signals more heavily",
			da.UpAccuracy, da.DownAccuracy,
		), true
	case da.DownAccuracy > da.UpAccuracy+15:
		return fmt.Sprintf(
			"downward calls are markedly more accurate (%.1f%% vs %.1f%%); weight sell-side signals more heavily",
			da.DownAccuracy, da.UpAccuracy,
		), true
	default:
		return "", false
	}
}

// ruleFavorableStocks lists ranked tickers with accuracy above 70%
func ruleFavorableStocks(r *contracts.ChallengeReport) (string, bool) {
	names := make([]string, 0, len(r.BestPredictedStocks))
	for _, s := range r.BestPredictedStocks {
		if s.Accuracy > 70 {
			names = append(names, fmt.Sprintf("%s (%.1f%%)", s.Ticker, s.Accuracy))
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return fmt.Sprintf("strong track record on %s; favor signals for these instruments", strings.Join(names, ", ")), true
}

// ruleHighRiskStocks flags ranked tickers with accuracy below 40%
func ruleHighRiskStocks(r *contracts.ChallengeReport) (string, bool) {
	names := make([]string, 0, len(r.WorstPredictedStocks))
	for _, s := range r.WorstPredictedStocks {
		if s.Accuracy < 40 {
			names = append(names, fmt.Sprintf("%s (%.1f%%)", s.Ticker, s.Accuracy))
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return fmt.Sprintf("weak track record on %s; treat signals for these instruments as high risk", strings.Join(names, ", ")), true
}

// ruleAccuracyTrend reports the monotonic 7-point trend when present
func ruleAccuracyTrend(r *contracts.ChallengeReport) (string, bool) {
	switch r.TrendSignal {
	case contracts.TrendImproving:
		return "accuracy has been improving over the last 7 verified challenges", true
	case contracts.TrendDeclining:
		return "accuracy has been declining over the last 7 verified challenges; review recent market conditions", true
	default:
		return "", false
	}
}
