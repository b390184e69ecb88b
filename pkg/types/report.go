// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the competitor-engine pipeline:
// research results, source sets, analysis reports, configuration, and the
// errors that cross package boundaries.
package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"
)

// Stage names one of the fixed research queries of an analysis run.
type Stage string

const (
	StageCompetitors        Stage = "competitors"
	StageProducts           Stage = "products"
	StagePricing            Stage = "pricing"
	StageMarketing          Stage = "marketing"
	StageCustomerExperience Stage = "customer_experience"
	StageBusinessOperations Stage = "business_operations"
	StageSWOT               Stage = "swot"
)

// StageOrder is the execution and serialization order of the stages.
var StageOrder = []Stage{
	StageCompetitors,
	StageProducts,
	StagePricing,
	StageMarketing,
	StageCustomerExperience,
	StageBusinessOperations,
	StageSWOT,
}

var stageTitles = map[Stage]string{
	StageCompetitors:        "Competitors",
	StageProducts:           "Products",
	StagePricing:            "Pricing",
	StageMarketing:          "Marketing",
	StageCustomerExperience: "Customer Experience",
	StageBusinessOperations: "Business Operations",
	StageSWOT:               "SWOT",
}

// Title returns the human-readable section heading for the stage.
func (s Stage) Title() string {
	if t, ok := stageTitles[s]; ok {
		return t
	}
	return string(s)
}

// Valid reports whether s is one of the seven known stages.
func (s Stage) Valid() bool {
	_, ok := stageTitles[s]
	return ok
}

// SourceSet holds the references mined from one research answer.
// URLs and Citations are deduplicated and sorted. TotalSources is the size
// of the union of both lists.
type SourceSet struct {
	URLs         []string `json:"urls" yaml:"urls"`
	Citations    []string `json:"citations" yaml:"citations"`
	TotalSources int      `json:"total_sources" yaml:"total_sources"`
}

// ResearchResult is the outcome of one research query. A successful result
// carries Analysis, Sources and Timestamp; a failed one carries Error and,
// when the API answered without any choices, the decoded response as sent.
type ResearchResult struct {
	Success     bool            `json:"success" yaml:"success"`
	Analysis    string          `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Sources     *SourceSet      `json:"sources,omitempty" yaml:"sources,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
	RawResponse json.RawMessage `json:"raw_response,omitempty" yaml:"-"`
}

// Succeeded builds a successful ResearchResult.
func Succeeded(analysis string, sources SourceSet, at time.Time) ResearchResult {
	return ResearchResult{
		Success:   true,
		Analysis:  analysis,
		Sources:   &sources,
		Timestamp: at,
	}
}

// Failed builds a failed ResearchResult with the given error text.
func Failed(msg string) ResearchResult {
	return ResearchResult{Error: msg}
}

// SourceCount returns the number of distinct sources, or 0 for a failed result.
func (r ResearchResult) SourceCount() int {
	if !r.Success || r.Sources == nil {
		return 0
	}
	return r.Sources.TotalSources
}

// Sections maps each stage to its result. It marshals as an object whose
// keys follow StageOrder; unknown keys (from hand-edited files) trail in
// lexical order.
type Sections map[Stage]ResearchResult

// Keys returns the stages present in s: known stages in StageOrder, then
// unknown keys in lexical order.
func (s Sections) Keys() []Stage {
	keys := make([]Stage, 0, len(s))
	for _, stage := range StageOrder {
		if _, ok := s[stage]; ok {
			keys = append(keys, stage)
		}
	}
	var extra []Stage
	for k := range s {
		if !k.Valid() {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(keys, extra...)
}

// MarshalJSON writes the sections in stage order without HTML escaping.
func (s Sections) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, stage := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(string(stage))
		if err != nil {
			return nil, err
		}
		val, err := marshalNoEscape(s[stage])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits the sections as a mapping node in stage order.
func (s Sections) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, stage := range s.Keys() {
		var val yaml.Node
		if err := val.Encode(s[stage]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(stage)},
			&val,
		)
	}
	return node, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// AnalysisReport is the persisted output of one analysis run.
type AnalysisReport struct {
	CompanyName string    `json:"company_name" yaml:"company_name"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Sections    Sections  `json:"analysis_sections" yaml:"analysis_sections"`
}

// NewAnalysisReport returns an empty report for company stamped with at.
func NewAnalysisReport(company string, at time.Time) *AnalysisReport {
	return &AnalysisReport{
		CompanyName: company,
		Timestamp:   at,
		Sections:    make(Sections, len(StageOrder)),
	}
}

// Failures returns the stages whose result is a failure, in stage order.
func (r *AnalysisReport) Failures() []Stage {
	var failed []Stage
	for _, stage := range r.Sections.Keys() {
		if !r.Sections[stage].Success {
			failed = append(failed, stage)
		}
	}
	return failed
}

// Complete reports whether every known stage has a recorded result.
func (r *AnalysisReport) Complete() bool {
	for _, stage := range StageOrder {
		if _, ok := r.Sections[stage]; !ok {
			return false
		}
	}
	return true
}
