package providers

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dshills/guard/internal/config"
	"github.com/dshills/guard/internal/review"
	"go.uber.org/zap"
)

// Client performs analysis and synthesis calls against a chat-completions
// endpoint.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	language string
	client   *http.Client
	logger   *zap.Logger
}

// New creates a Client from the effective config and resolved credentials.
// A credentials endpoint overrides the configured one.
func New(cfg config.Config, creds config.Credentials, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if creds.Endpoint != "" {
		endpoint = creds.Endpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		logger.Warn("TLS certificate verification disabled", zap.String("endpoint", endpoint))
	}

	return &Client{
		apiKey:   creds.APIKey,
		model:    cfg.Model,
		endpoint: endpoint,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		logger:   logger,
	}
}

// Endpoint returns the URL calls are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Analyze sends one chunk with its instruction and returns the model's text.
func (c *Client) Analyze(ctx context.Context, chunk, instruction string) (string, error) {
	return c.complete(ctx, StageAnalysis,
		review.AnalysisSystemPrompt(c.language),
		review.AnalysisUserPrompt(chunk, instruction),
	)
}

// Synthesize merges partial analyses into one report.
func (c *Client) Synthesize(ctx context.Context, results []string, instruction string) (string, error) {
	return c.complete(ctx, StageSynthesis,
		review.SynthesisSystemPrompt(c.language),
		review.SynthesisUserPrompt(results, instruction),
	)
}

func (c *Client) complete(ctx context.Context, stage Stage, system, user string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Stage: stage, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.logger.Debug("sending request",
		zap.String("stage", string(stage)),
		zap.String("model", c.model),
		zap.Int("bytes", len(payload)),
	)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Stage: stage, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &TransportError{Stage: stage, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("response received",
		zap.String("stage", string(stage)),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &ServiceError{Stage: stage, StatusCode: httpResp.StatusCode, Body: truncateBody(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &MalformedResponseError{Stage: stage, Reason: "invalid JSON: " + err.Error()}
	}
	if len(result.Choices) == 0 {
		return "", &MalformedResponseError{Stage: stage, Reason: "no choices in response"}
	}
	if result.Choices[0].Message.Content == nil {
		return "", &MalformedResponseError{Stage: stage, Reason: "missing message content"}
	}

	return *result.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatResponseMessage `json:"message"`
}

type chatResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}
