// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research sends company research questions to a deep-research
// chat completions API and turns each answer into a ResearchResult.
package research

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/competitor-engine/internal/httputil"
	"github.com/pdiddy/competitor-engine/internal/secrets"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

// Researcher answers one research query. Implementations never return an
// error: every failure is reported inside the ResearchResult.
type Researcher interface {
	Research(ctx context.Context, query, background string) types.ResearchResult
}

// persona is prepended to every prompt.
const persona = "You are an expert competitive intelligence analyst. \n" +
	"Provide detailed, actionable insights with specific examples, numbers, and data points. \n" +
	"Always cite your sources and include URLs when available.\n" +
	"Focus on practical business intelligence that can drive strategic decisions.\n" +
	"Be comprehensive but concise."

// BuildPrompt joins the persona, the optional shared background, and the
// query, each separated by a blank line.
func BuildPrompt(query, background string) string {
	body := query
	if background != "" {
		body = background + "\n\n" + query
	}
	return persona + "\n\n" + body
}

// Client calls a Perplexity-compatible chat completions endpoint.
type Client struct {
	apiKey    string
	endpoint  string
	model     string
	maxTokens int
	http      *http.Client
	now       func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the clock used to stamp successful results.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a Client from cfg. A missing or placeholder API key is a
// *types.ConfigurationError and no client is returned, so no request can be
// made without a key. Zero-valued settings take the package defaults except
// RequestTimeout, where zero means no timeout.
func NewClient(cfg types.ResearchConfig, opts ...Option) (*Client, error) {
	if secrets.IsPlaceholder(cfg.APIKey) {
		return nil, &types.ConfigurationError{
			Setting:     secrets.PerplexityEnv,
			Placeholder: strings.TrimSpace(cfg.APIKey) != "",
			Err:         types.ErrMissingAPIKey,
		}
	}

	c := &Client{
		apiKey:    cfg.APIKey,
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		http:      &http.Client{Timeout: cfg.RequestTimeout},
		now:       time.Now,
	}
	if c.endpoint == "" {
		c.endpoint = types.DefaultEndpoint
	}
	if c.model == "" {
		c.model = types.DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = types.DefaultMaxTokens
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Research issues exactly one request. Transport errors and non-2xx statuses
// yield "API request failed: ...", an undecodable body yields
// "Analysis failed: ...", and an answer without choices yields
// "No response from API" with the decoded body attached.
func (c *Client) Research(ctx context.Context, query, background string) types.ResearchResult {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: BuildPrompt(query, background)},
		},
		MaxTokens: c.maxTokens,
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	data, err := httputil.PostJSON(ctx, c.http, c.endpoint, header, req)
	if err != nil {
		return types.Failed("API request failed: " + err.Error())
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.Failed("Analysis failed: " + err.Error())
	}

	if len(resp.Choices) == 0 {
		res := types.Failed("No response from API")
		res.RawResponse = json.RawMessage(data)
		return res
	}

	content := resp.Choices[0].Message.Content
	return types.Succeeded(content, MineSources(content), c.now())
}
