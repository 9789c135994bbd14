// Package analyzer wraps the external receipt-analysis service. One call
// maps to exactly one HTTP request against the Gemini generateContent
// endpoint; failures are surfaced as errors the caller recovers from by
// falling back to manual entry.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"snapexpense/internal/core"
	applog "snapexpense/internal/log"
)

// instruction is the fixed prompt sent with every image.
const instruction = "Analyze this receipt image. Extract the total amount, the merchant name, and the date."

// dataURIPrefix matches the embedding prefix browsers add to captured
// images; it is stripped before transmission.
var dataURIPrefix = regexp.MustCompile(`^data:image/(png|jpg|jpeg|webp);base64,`)

// Config for the analyzer client.
type Config struct {
	APIKey  string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com/v1beta
	Model   string        // e.g. "gemini-2.5-flash"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *applog.Logger
}

// Enabled reports whether a provider credential is present. Without one
// the capture flow skips analysis entirely.
func (c Config) Enabled() bool {
	return c.APIKey != "" || os.Getenv("GEMINI_API_KEY") != ""
}

func NewClient(cfg Config, logger *applog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.WithComponent(applog.ComponentAnalyzer),
	}
}

// Analyze sends one image to the service and decodes the best-effort
// structured guess. Any field of the result may be nil. There is no retry;
// the caller treats every error as non-fatal.
func (c *Client) Analyze(ctx context.Context, image string) (core.ReceiptAnalysis, error) {
	start := time.Now()
	data := dataURIPrefix.ReplaceAllString(image, "")

	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"inline_data": map[string]any{
					// Camera captures are jpeg; the service tolerates the
					// occasional png declared as jpeg.
					"mime_type": "image/jpeg",
					"data":      data,
				}},
				{"text": instruction},
			},
		}},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
			"response_schema":    responseSchema(),
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.WarnContext(ctx, "Receipt analysis request failed",
			applog.FieldError, err,
			applog.FieldModel, c.cfg.Model,
			applog.FieldDuration, time.Since(start).Milliseconds())
		return core.ReceiptAnalysis{}, err
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return core.ReceiptAnalysis{}, fmt.Errorf("decode analyzer response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return core.ReceiptAnalysis{}, fmt.Errorf("no content in analyzer response")
	}
	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return core.ReceiptAnalysis{}, fmt.Errorf("empty analyzer response body")
	}

	if err := ValidateAnalysisJSON([]byte(text)); err != nil {
		c.logger.WarnContext(ctx, "Analyzer returned non-conforming JSON",
			applog.FieldError, err, "content", text)
		return core.ReceiptAnalysis{}, err
	}

	var out core.ReceiptAnalysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return core.ReceiptAnalysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}

	c.logger.InfoContext(ctx, "Receipt analyzed",
		applog.FieldModel, c.cfg.Model,
		"has_amount", out.Amount != nil,
		"has_merchant", out.Merchant != nil,
		"has_date", out.Date != nil,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer http error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read analyzer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analyzer status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
