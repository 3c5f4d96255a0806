package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/witchakorn/stockarena/internal/contracts"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/httputil"
	"github.com/witchakorn/stockarena/pkg/logger"
)

// Client fetches directional forecasts from an OpenAI-compatible
// chat-completions API
// ⭐ SSOT: 예측 모델 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	model      string
}

var _ contracts.Predictor = (*Client)(nil)

// NewClient creates a new predictor client from config
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.Predictor.BaseURL, "/"),
		apiKey:     cfg.Predictor.APIKey,
		model:      cfg.Predictor.Model,
	}
}

const systemPrompt = `You are a market analyst. Given a stock ticker, predict whether its price will close higher or lower tomorrow. Respond with a single JSON object: {"direction": "up" or "down", "confidence": integer 0-100, "rationale": short reason}. No other text.`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Predict requests a next-day directional forecast for the ticker.
// 실패 시 항상 ErrPredictionUnavailable로 래핑
func (c *Client) Predict(ctx context.Context, ticker string) (*contracts.PredictionDraft, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Ticker: %s", ticker)},
		},
		Temperature:    0.3,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	resp, err := c.httpClient.PostJSONWithHeaders(ctx, c.baseURL+"/chat/completions", reqBody, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrPredictionUnavailable, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", contracts.ErrPredictionUnavailable, ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", contracts.ErrPredictionUnavailable, ticker, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: decode response: %v", contracts.ErrPredictionUnavailable, ticker, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", contracts.ErrPredictionUnavailable, ticker, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s: empty choices", contracts.ErrPredictionUnavailable, ticker)
	}

	draft, err := parseDraft(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrPredictionUnavailable, ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"direction":  draft.Direction,
		"confidence": draft.Confidence,
	}).Debug("Prediction received")

	return draft, nil
}

// parseDraft decodes and validates the model's JSON answer
func parseDraft(content string) (*contracts.PredictionDraft, error) {
	// Some models wrap JSON in markdown fences despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var draft contracts.PredictionDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("parse model output: %v", err)
	}

	if !draft.Direction.Valid() {
		return nil, fmt.Errorf("invalid direction %q", draft.Direction)
	}
	if draft.Confidence < 0 || draft.Confidence > 100 {
		return nil, fmt.Errorf("confidence %d out of range", draft.Confidence)
	}
	return &draft, nil
}
