// Package ollama 本地 Ollama 服務客戶端
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-assistant/internal/core/ai/provider"
	"recipe-assistant/internal/pkg/common"
)

// Client Ollama API 客戶端
type Client struct {
	client *resty.Client
	config provider.Config
}

var _ provider.Provider = (*Client)(nil)

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient 創建新的 Ollama 客戶端
func NewClient(cfg provider.Config) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{client: client, config: cfg}
}

// Generate 呼叫 /api/generate，不使用串流
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	options := map[string]any{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.TopP > 0 {
		options["top_p"] = req.TopP
	}
	if len(req.Stop) > 0 {
		options["stop"] = req.Stop
	}

	var result generateResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:   c.config.Model,
			Prompt:  req.Prompt(),
			Stream:  false,
			Options: options,
		}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Ollama: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogDebug("Ollama 回傳錯誤狀態",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", apiErr.Error),
		)
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode(), apiErr.Error)
	}

	content := strings.TrimSpace(result.Response)
	if content == "" {
		return nil, provider.ErrEmptyResponse
	}
	return &provider.Response{
		Content: content,
		Usage: provider.Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}

// Embed 呼叫 /api/embed
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var result embedResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: c.config.EmbedModel, Input: texts}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("failed to send embed request to Ollama: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("Ollama embed error (status %d): %s", resp.StatusCode(), apiErr.Error)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Ollama returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}
	return result.Embeddings, nil
}

// GetModel 模型名稱
func (c *Client) GetModel() string { return c.config.Model }

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration { return c.config.Timeout }

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
