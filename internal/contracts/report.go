package contracts

// ReportOptions tune the analytics window
type ReportOptions struct {
	// MinSample 랭킹 자격 최소 예측 횟수
	MinSample int `json:"min_sample"`
	// TopN best/worst 종목 수
	TopN int `json:"top_n"`
}

// DefaultReportOptions returns the standard analytics thresholds
func DefaultReportOptions() ReportOptions {
	return ReportOptions{MinSample: 3, TopN: 5}
}

// AccuracyPoint 검증된 챌린지 1건의 정확도 (시간순)
type AccuracyPoint struct {
	Date         string  `json:"date"`
	Accuracy     float64 `json:"accuracy"`
	CorrectCount int     `json:"correct_count"`
}

// TickerAccuracy 종목별 누적 적중 통계
type TickerAccuracy struct {
	Ticker           string  `json:"ticker"`
	CorrectCount     int     `json:"correct_count"`
	TotalPredictions int     `json:"total_predictions"`
	Accuracy         float64 `json:"accuracy"`
}

// DirectionalAccuracy up/down 예측 각각의 적중률
type DirectionalAccuracy struct {
	UpPredictions          int     `json:"up_predictions"`
	CorrectUpPredictions   int     `json:"correct_up_predictions"`
	UpAccuracy             float64 `json:"up_accuracy"`
	DownPredictions        int     `json:"down_predictions"`
	CorrectDownPredictions int     `json:"correct_down_predictions"`
	DownAccuracy           float64 `json:"down_accuracy"`
}

// ConfidenceBucket 신뢰도 구간별 calibration
type ConfidenceBucket struct {
	Range       string  `json:"confidence_range"`
	Predictions int     `json:"predictions"`
	Correct     int     `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
}

// TrendSignal 최근 7포인트 단조 추세 분류
type TrendSignal string

const (
	TrendImproving TrendSignal = "improving"
	TrendDeclining TrendSignal = "declining"
	TrendNone      TrendSignal = ""
)

// ChallengeReport 검증 이력에 대한 집계 리포트 (JSON 직렬화 대상)
type ChallengeReport struct {
	TotalChallenges     int  `json:"total_challenges"`
	CompletedChallenges int  `json:"completed_challenges"`
	Wins                int  `json:"wins"`
	Losses              int  `json:"losses"`

	WinRate float64 `json:"win_rate"`

	AccuracyTrend        []AccuracyPoint     `json:"accuracy_trend"`
	BestPredictedStocks  []TickerAccuracy    `json:"best_predicted_stocks"`
	WorstPredictedStocks []TickerAccuracy    `json:"worst_predicted_stocks"`
	DirectionalAccuracy  DirectionalAccuracy `json:"directional_accuracy"`
	ConfidenceAnalysis   []ConfidenceBucket  `json:"confidence_analysis"`

	TrendSignal     TrendSignal `json:"trend_signal,omitempty"`
	Recommendations []string    `json:"recommendations"`
}
