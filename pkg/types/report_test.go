// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func fullReport() *AnalysisReport {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	r := NewAnalysisReport("Acme Corp", at)
	// Insert in reverse to prove output order does not depend on insertion.
	for i := len(StageOrder) - 1; i >= 0; i-- {
		stage := StageOrder[i]
		if stage == StagePricing {
			r.Sections[stage] = Failed("API request failed: boom")
			continue
		}
		r.Sections[stage] = Succeeded("analysis of "+string(stage), SourceSet{
			URLs:         []string{"https://x.test/a"},
			Citations:    []string{"[1]"},
			TotalSources: 2,
		}, at)
	}
	return r
}

func TestSectionsMarshalJSONOrder(t *testing.T) {
	data, err := json.Marshal(fullReport())
	require.NoError(t, err)

	s := string(data)
	last := -1
	for _, stage := range StageOrder {
		idx := strings.Index(s, `"`+string(stage)+`":`)
		require.GreaterOrEqual(t, idx, 0, "missing stage %s", stage)
		assert.Greater(t, idx, last, "stage %s out of order", stage)
		last = idx
	}
}

func TestSectionsMarshalJSONNoHTMLEscape(t *testing.T) {
	r := NewAnalysisReport("Café & Co", time.Time{})
	r.Sections[StageSWOT] = Succeeded("<b>strengths</b> & weaknesses", SourceSet{URLs: []string{}, Citations: []string{}}, time.Time{})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(r.Sections))
	assert.Contains(t, buf.String(), "<b>strengths</b> & weaknesses")
	assert.NotContains(t, buf.String(), `\u003c`)
}

func TestAnalysisReportJSONRoundTrip(t *testing.T) {
	want := fullReport()
	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got AnalysisReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want.CompanyName, got.CompanyName)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	require.Len(t, got.Sections, len(StageOrder))
	assert.Equal(t, want.Sections[StagePricing], got.Sections[StagePricing])
	assert.Equal(t, "analysis of swot", got.Sections[StageSWOT].Analysis)
	assert.Equal(t, 2, got.Sections[StageSWOT].SourceCount())
}

func TestFailedResultOmitsSuccessFields(t *testing.T) {
	data, err := json.Marshal(Failed("No response from API"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"No response from API"}`, string(data))
}

func TestSectionsMarshalYAMLOrder(t *testing.T) {
	data, err := yaml.Marshal(fullReport())
	require.NoError(t, err)

	s := string(data)
	last := -1
	for _, stage := range StageOrder {
		idx := strings.Index(s, "\n    "+string(stage)+":")
		require.GreaterOrEqual(t, idx, 0, "missing stage %s in:\n%s", stage, s)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestReportFailuresAndComplete(t *testing.T) {
	r := fullReport()
	assert.True(t, r.Complete())
	assert.Equal(t, []Stage{StagePricing}, r.Failures())

	delete(r.Sections, StageSWOT)
	assert.False(t, r.Complete())
}

func TestStageTitle(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageCompetitors, "Competitors"},
		{StageCustomerExperience, "Customer Experience"},
		{StageBusinessOperations, "Business Operations"},
		{StageSWOT, "SWOT"},
		{Stage("legacy"), "legacy"},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.Title())
		})
	}
}

func TestConfigurationError(t *testing.T) {
	var err error = &ConfigurationError{Setting: "PERPLEXITY_API_KEY", Err: ErrMissingAPIKey}
	assert.EqualError(t, err, "PERPLEXITY_API_KEY not set")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}
