package report

import (
	"sort"

	"github.com/witchakorn/stockarena/internal/contracts"
)

// Engine turns verified challenge history into an aggregate report.
// ⭐ SSOT: 리포트 집계는 여기서만. 순수 함수, 부수효과 없음
type Engine struct {
	opts contracts.ReportOptions
}

// NewEngine creates a report engine with the given thresholds
func NewEngine(opts contracts.ReportOptions) *Engine {
	if opts.MinSample <= 0 {
		opts.MinSample = contracts.DefaultReportOptions().MinSample
	}
	if opts.TopN <= 0 {
		opts.TopN = contracts.DefaultReportOptions().TopN
	}
	return &Engine{opts: opts}
}

// Generate computes the full report over the given history snapshot.
// history 순서는 무관, 내부에서 날짜 오름차순 정렬 후 계산
// 빈 입력에도 항상 0으로 채운 리포트 반환 (NaN 금지)
func (e *Engine) Generate(history []contracts.Challenge) contracts.ChallengeReport {
	verified := make([]contracts.Challenge, 0, len(history))
	for _, ch := range history {
		if ch.Verified() && ch.CorrectCount != nil {
			verified = append(verified, ch)
		}
	}
	sort.Slice(verified, func(i, j int) bool {
		return verified[i].ChallengeDate.Before(verified[j].ChallengeDate)
	})

	rep := contracts.ChallengeReport{
		TotalChallenges:      len(history),
		CompletedChallenges:  len(verified),
		AccuracyTrend:        []contracts.AccuracyPoint{},
		BestPredictedStocks:  []contracts.TickerAccuracy{},
		WorstPredictedStocks: []contracts.TickerAccuracy{},
		ConfidenceAnalysis:   []contracts.ConfidenceBucket{},
		Recommendations:      []string{},
	}

	if len(verified) == 0 {
		rep.Recommendations = applyRules(&rep)
		return rep
	}

	for _, ch := range verified {
		if *ch.Won {
			rep.Wins++
		} else {
			rep.Losses++
		}
	}
	rep.WinRate = percent(rep.Wins, len(verified))

	rep.AccuracyTrend = accuracyTrend(verified)
	rep.BestPredictedStocks, rep.WorstPredictedStocks = rankTickers(verified, e.opts)
	rep.DirectionalAccuracy = directionalAccuracy(verified)
	rep.ConfidenceAnalysis = confidenceAnalysis(verified)
	rep.TrendSignal = trendSignal(rep.AccuracyTrend)
	rep.Recommendations = applyRules(&rep)

	return rep
}

// percent is the safe ratio: 0 on empty denominator, never NaN
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func accuracyTrend(verified []contracts.Challenge) []contracts.AccuracyPoint {
	trend := make([]contracts.AccuracyPoint, 0, len(verified))
	for _, ch := range verified {
		trend = append(trend, contracts.AccuracyPoint{
			Date:         ch.ChallengeDate.Format("2006-01-02"),
			Accuracy:     percent(*ch.CorrectCount, contracts.PredictionsPerChallenge),
			CorrectCount: *ch.CorrectCount,
		})
	}
	return trend
}

// rankTickers aggregates per-ticker hit rates and returns the top and
// bottom performers. MinSample 미만 종목은 랭킹 제외
func rankTickers(verified []contracts.Challenge, opts contracts.ReportOptions) (best, worst []contracts.TickerAccuracy) {
	type tally struct{ correct, total int }
	perTicker := make(map[string]*tally)

	for _, ch := range verified {
		for _, o := range ch.Outcomes {
			t, ok := perTicker[o.Ticker]
			if !ok {
				t = &tally{}
				perTicker[o.Ticker] = t
			}
			t.total++
			if o.Correct {
				t.correct++
			}
		}
	}

	eligible := make([]contracts.TickerAccuracy, 0, len(perTicker))
	for ticker, t := range perTicker {
		if t.total < opts.MinSample {
			continue
		}
		eligible = append(eligible, contracts.TickerAccuracy{
			Ticker:           ticker,
			CorrectCount:     t.correct,
			TotalPredictions: t.total,
			Accuracy:         percent(t.correct, t.total),
		})
	}

	// Ties break on ticker name so repeated runs produce identical output.
	best = make([]contracts.TickerAccuracy, len(eligible))
	copy(best, eligible)
	sort.Slice(best, func(i, j int) bool {
		if best[i].Accuracy != best[j].Accuracy {
			return best[i].Accuracy > best[j].Accuracy
		}
		return best[i].Ticker < best[j].Ticker
	})

	worst = make([]contracts.TickerAccuracy, len(eligible))
	copy(worst, eligible)
	sort.Slice(worst, func(i, j int) bool {
		if worst[i].Accuracy != worst[j].Accuracy {
			return worst[i].Accuracy < worst[j].Accuracy
		}
		return worst[i].Ticker < worst[j].Ticker
	})

	if len(best) > opts.TopN {
		best = best[:opts.TopN]
	}
	if len(worst) > opts.TopN {
		worst = worst[:opts.TopN]
	}
	return best, worst
}

func directionalAccuracy(verified []contracts.Challenge) contracts.DirectionalAccuracy {
	var da contracts.DirectionalAccuracy
	for _, ch := range verified {
		for _, o := range ch.Outcomes {
			switch o.PredictedDirection {
			case contracts.DirectionUp:
				da.UpPredictions++
				if o.Correct {
					da.CorrectUpPredictions++
				}
			case contracts.DirectionDown:
				da.DownPredictions++
				if o.Correct {
					da.CorrectDownPredictions++
				}
			}
		}
	}
	da.UpAccuracy = percent(da.CorrectUpPredictions, da.UpPredictions)
	da.DownAccuracy = percent(da.CorrectDownPredictions, da.DownPredictions)
	return da
}

// confidenceBounds are the fixed calibration ranges. The lowest range is
// closed at 0 so a confidence of exactly 0 is still counted.
var confidenceBounds = []struct {
	min, max int
}{
	{0, 50},
	{50, 70},
	{70, 85},
	{85, 100},
}

func confidenceAnalysis(verified []contracts.Challenge) []contracts.ConfidenceBucket {
	buckets := make([]contracts.ConfidenceBucket, len(confidenceBounds))

	for _, ch := range verified {
		if len(ch.Outcomes) != len(ch.Predictions) {
			continue
		}
		for i, p := range ch.Predictions {
			idx := bucketIndex(p.Confidence)
			if idx < 0 {
				continue
			}
			buckets[idx].Predictions++
			if ch.Outcomes[i].Correct {
				buckets[idx].Correct++
			}
		}
	}

	for i, b := range confidenceBounds {
		buckets[i].Range = rangeLabel(b.min, b.max)
		buckets[i].Accuracy = percent(buckets[i].Correct, buckets[i].Predictions)
	}
	return buckets
}

func bucketIndex(confidence int) int {
	for i, b := range confidenceBounds {
		if i == 0 && confidence >= b.min && confidence <= b.max {
			return i
		}
		if confidence > b.min && confidence <= b.max {
			return i
		}
	}
	return -1
}

// trendSignal classifies the last 7 chronological accuracy points.
// 7개 미만이면 신호 없음
func trendSignal(trend []contracts.AccuracyPoint) contracts.TrendSignal {
	const window = 7
	if len(trend) < window {
		return contracts.TrendNone
	}
	recent := trend[len(trend)-window:]

	improving, declining := true, true
	for i := 1; i < len(recent); i++ {
		if recent[i].Accuracy < recent[i-1].Accuracy {
			improving = false
		}
		if recent[i].Accuracy > recent[i-1].Accuracy {
			declining = false
		}
	}

	// A perfectly flat window satisfies both; improving wins the tie.
	switch {
	case improving:
		return contracts.TrendImproving
	case declining:
		return contracts.TrendDeclining
	default:
		return contracts.TrendNone
	}
}
