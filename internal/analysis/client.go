package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/pkg/utils"
)

// Config holds settings for the completion-service client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // default gpt-4o
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

// Client is an Analyzer backed by an OpenAI-compatible chat-completions API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a Client with defaults applied. A nil logger disables
// diagnostic logging.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Analyze issues one synchronous chat-completions request and returns the
// parsed, schema-validated verdict. The upstream call is not retried; any
// upstream failure, malformed reply, or schema violation is an error whose
// detail is logged but suitable for a generic user-facing message.
func (c *Client) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	start := time.Now()
	c.logger.Info("analysis request",
		zap.Int("report_len", len(req.ReportText)),
		zap.Int("policy_len", len(req.PolicyText)),
		zap.String("model", c.cfg.Model),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(req.ReportText, req.PolicyText)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &completion); err != nil {
		c.logger.Error("analysis response decode failed", zap.Error(err), zap.Int("raw_bytes", len(raw)))
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		c.logger.Error("analysis response has no choices")
		return nil, fmt.Errorf("no choices in completion response")
	}

	content := []byte(strings.TrimSpace(completion.Choices[0].Message.Content))
	if err := ValidateAgainstSchema(BuildAnalysisJSONSchema(), content); err != nil {
		c.logger.Error("analysis reply failed schema validation",
			zap.Error(err), zap.ByteString("content", content))
		return nil, fmt.Errorf("model reply failed validation: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(content, &result); err != nil {
		c.logger.Error("analysis reply unmarshal failed", zap.Error(err))
		return nil, fmt.Errorf("unmarshal analysis result: %w", err)
	}
	if err := result.Validate(); err != nil {
		c.logger.Error("analysis reply failed shape validation", zap.Error(err))
		return nil, fmt.Errorf("invalid analysis result: %w", err)
	}

	c.logger.Info("analysis complete",
		zap.String("status", string(result.Status)),
		zap.Int("critical_issues", len(result.CriticalIssues)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &result, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("completion request failed", zap.Error(err))
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("completion service returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", utils.Truncate(string(raw), 2048)),
		)
		return nil, fmt.Errorf("completion service status %d", resp.StatusCode)
	}
	return raw, nil
}
