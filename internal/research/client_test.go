// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, ts *httptest.Server, cfg types.ResearchConfig) *Client {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "pplx-test"
	}
	cfg.Endpoint = ts.URL
	c, err := NewClient(cfg, WithHTTPClient(ts.Client()), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return c
}

func TestBuildPrompt(t *testing.T) {
	withCtx := BuildPrompt("Who competes?", "PROFILE")
	assert.True(t, strings.HasPrefix(withCtx, "You are an expert competitive intelligence analyst. \n"))
	assert.True(t, strings.HasSuffix(withCtx, "Be comprehensive but concise.\n\nPROFILE\n\nWho competes?"))

	noCtx := BuildPrompt("Who competes?", "")
	assert.True(t, strings.HasSuffix(noCtx, "Be comprehensive but concise.\n\nWho competes?"))
}

func TestResearch_Success(t *testing.T) {
	var got chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pplx-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Rivals: Globex https://x.test/a [1] and https://x.test/a again [1]"}}]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, types.ResearchConfig{})
	res := c.Research(context.Background(), "Who competes with Acme?", "ctx")

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.Analysis, "Rivals: Globex")
	assert.Equal(t, fixedNow, res.Timestamp)
	require.NotNil(t, res.Sources)
	assert.Equal(t, []string{"https://x.test/a"}, res.Sources.URLs)
	assert.Equal(t, []string{"[1]"}, res.Sources.Citations)
	assert.Equal(t, 2, res.Sources.TotalSources)

	assert.Equal(t, types.DefaultModel, got.Model)
	assert.Equal(t, 4000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, BuildPrompt("Who competes with Acme?", "ctx"), got.Messages[0].Content)
}

func TestResearch_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantPrefix string
		wantRaw    bool
	}{
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       "upstream exploded",
			wantPrefix: "API request failed: ",
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error":"bad key"}`,
			wantPrefix: "API request failed: ",
		},
		{
			name:       "undecodable body",
			status:     http.StatusOK,
			body:       "<html>not json</html>",
			wantPrefix: "Analysis failed: ",
		},
		{
			name:       "empty choices",
			status:     http.StatusOK,
			body:       `{"choices":[],"id":"abc"}`,
			wantPrefix: "No response from API",
			wantRaw:    true,
		},
		{
			name:       "missing choices",
			status:     http.StatusOK,
			body:       `{"id":"abc"}`,
			wantPrefix: "No response from API",
			wantRaw:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			res := newTestClient(t, ts, types.ResearchConfig{}).Research(context.Background(), "q", "")

			assert.False(t, res.Success)
			assert.True(t, strings.HasPrefix(res.Error, tt.wantPrefix), "error %q", res.Error)
			assert.Empty(t, res.Analysis)
			assert.Nil(t, res.Sources)
			if tt.wantRaw {
				assert.JSONEq(t, tt.body, string(res.RawResponse))
			} else {
				assert.Empty(t, res.RawResponse)
			}
		})
	}
}

func TestResearch_NoRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	res := newTestClient(t, ts, types.ResearchConfig{}).Research(context.Background(), "q", "")
	assert.False(t, res.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c, err := NewClient(types.ResearchConfig{APIKey: "k", Endpoint: ts.URL, RequestTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	res := c.Research(context.Background(), "q", "")
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, "API request failed: "))
}

func TestNewClient_ConfigurationError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	tests := []struct {
		name            string
		key             string
		wantPlaceholder bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"template placeholder", "your_api_key_here", true},
		{"readme placeholder", "your_actual_key", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(types.ResearchConfig{APIKey: tt.key, Endpoint: ts.URL})
			require.Error(t, err)
			assert.Nil(t, c)

			var ce *types.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "PERPLEXITY_API_KEY not set", err.Error())
			assert.Equal(t, tt.wantPlaceholder, ce.Placeholder)
			assert.ErrorIs(t, err, types.ErrMissingAPIKey)
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(types.ResearchConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultEndpoint, c.endpoint)
	assert.Equal(t, types.DefaultModel, c.model)
	assert.Equal(t, types.DefaultMaxTokens, c.maxTokens)
	assert.Zero(t, c.http.Timeout)
}
