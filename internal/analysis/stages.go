// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

// contextRunes is how much of the document is shared with every query.
const contextRunes = 2000

var contextTmpl = template.Must(template.New("context").Parse(`
COMPANY PROFILE FOR {{.Company}}:
{{.Profile}}

Based on this company profile, research and analyze the competitive landscape.
`))

// Step is one research stage: its report key, progress label, and query template.
type Step struct {
	Stage types.Stage
	Icon  string
	Label string
	query *template.Template
}

var steps = []Step{
	{
		Stage: types.StageCompetitors,
		Icon:  "📊",
		Label: "Identifying competitors...",
		query: template.Must(template.New("competitors").Parse(`
Find the TOP 5 DIRECT competitors and TOP 3 INDIRECT competitors for {{.Company}}.
Also identify:
- 3 emerging startups in this space
- 2 big tech companies that might enter this market
- Alternative solutions customers might choose instead

For each competitor, provide:
- Company name and brief description
- Why they're a threat to {{.Company}}
- Market position and recent funding/developments
- Key differentiators

Include specific sources and recent data.
`)),
	},
	{
		Stage: types.StageProducts,
		Icon:  "🛠️",
		Label: "Analyzing products & services...",
		query: template.Must(template.New("products").Parse(`
Research and compare {{.Company}}'s products/services with their top competitors:

- Detailed feature-by-feature comparison with top 3 competitors
- What unique features do competitors have that {{.Company}} lacks?
- What's in competitors' product roadmaps and development pipelines?
- Recent product launches and innovations by competitors
- Technical capabilities and specifications comparison
- Customer reviews comparing products

Provide specific examples, feature lists, and performance comparisons.
`)),
	},
	{
		Stage: types.StagePricing,
		Icon:  "💰",
		Label: "Researching pricing strategies...",
		query: template.Must(template.New("pricing").Parse(`
Research detailed pricing strategies for {{.Company}} and their competitors:

- Exact pricing tiers and models for top 5 competitors
- Subscription vs usage-based vs one-time pricing models
- Enterprise vs SMB pricing differences
- Discounts, promotions, and loyalty programs
- How customers perceive value vs price (review analysis)
- Estimated profit margins and cost structures
- Recent pricing changes and market reactions

Include specific pricing examples with sources.
`)),
	},
	{
		Stage: types.StageMarketing,
		Icon:  "📢",
		Label: "Analyzing marketing & sales...",
		query: template.Must(template.New("marketing").Parse(`
Analyze marketing and sales strategies for {{.Company}}'s main competitors:

- Target audience demographics, psychographics, and personas
- Brand positioning and messaging strategies
- Marketing channels: paid ads, content marketing, social media, partnerships
- Content marketing performance: blog topics, video strategies, case studies
- SEO strategy: keywords they rank for, content gaps
- Sales processes: lead generation, sales funnels, conversion tactics
- Recent successful marketing campaigns and their results

Provide specific campaign examples and performance metrics.
`)),
	},
	{
		Stage: types.StageCustomerExperience,
		Icon:  "😊",
		Label: "Evaluating customer experience...",
		query: template.Must(template.New("customer_experience").Parse(`
Research customer experience and sentiment for {{.Company}}'s competitors:

- Customer service quality: support channels, response times, satisfaction ratings
- User onboarding and customer journey analysis
- Customer reviews analysis: common complaints and praise
- Customer retention rates and loyalty metrics
- User experience strengths and weaknesses
- Support documentation and community engagement
- Customer success stories and case studies

Include review excerpts and sentiment analysis data.
`)),
	},
	{
		Stage: types.StageBusinessOperations,
		Icon:  "🏭",
		Label: "Assessing business operations...",
		query: template.Must(template.New("business_operations").Parse(`
Research business operations and financial health of {{.Company}}'s competitors:

- Company sizes: employee counts, office locations, remote work policies
- Market share estimates and revenue data
- Recent funding rounds, valuations, and investor information
- Technology stacks and infrastructure choices
- Partnership strategies and distribution channels
- Operational efficiency indicators and business model analysis
- Growth metrics, expansion plans, and hiring trends

Include financial data and operational benchmarks.
`)),
	},
	{
		Stage: types.StageSWOT,
		Icon:  "⚡",
		Label: "Performing SWOT analysis...",
		query: template.Must(template.New("swot").Parse(`
Perform a comprehensive SWOT analysis for {{.Company}} versus their competitive landscape:

STRENGTHS:
- What does {{.Company}} do better than competitors?
- Unique advantages and competitive moats
- Strong points in their market positioning

WEAKNESSES:
- Where do competitors clearly outperform {{.Company}}?
- Missing features, capabilities, or market presence
- Areas needing immediate improvement

OPPORTUNITIES:
- Market gaps {{.Company}} could exploit
- Competitor weaknesses they could capitalize on
- Emerging trends they could lead or leverage

THREATS:
- Biggest competitive threats and their strategies
- Market shifts that could hurt {{.Company}}
- Competitor moves to watch out for

Be specific with examples and actionable recommendations.
`)),
	},
}

// Stages returns the research steps in execution order.
func Stages() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// RenderQuery fills every company placeholder of the step's query.
func RenderQuery(step Step, company string) (string, error) {
	var buf bytes.Buffer
	if err := step.query.Execute(&buf, struct{ Company string }{Company: company}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildContext returns the profile block shared by all queries: a header
// naming the company, the first 2000 characters of the document, and a
// closing instruction.
func BuildContext(company, document string) string {
	profile := []rune(document)
	if len(profile) > contextRunes {
		profile = profile[:contextRunes]
	}

	var buf bytes.Buffer
	// Both fields are plain strings; Execute cannot fail.
	_ = contextTmpl.Execute(&buf, struct{ Company, Profile string }{Company: company, Profile: string(profile)})
	return buf.String()
}
