// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs the fixed sequence of research stages for one
// company and collects the results into an AnalysisReport.
package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/competitor-engine/internal/research"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

// Pipeline executes the research stages strictly one after another.
type Pipeline struct {
	researcher research.Researcher
	delay      time.Duration
	log        logrus.FieldLogger
	progress   io.Writer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewPipeline returns a Pipeline that sends queries to r, pauses
// cfg.InterStageDelay between stages, logs to log, and writes one progress
// line per stage to progress (which may be nil).
func NewPipeline(r research.Researcher, cfg types.PipelineConfig, log logrus.FieldLogger, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}
	delay := cfg.InterStageDelay
	if delay < 0 {
		delay = 0
	}
	return &Pipeline{
		researcher: r,
		delay:      delay,
		log:        log,
		progress:   progress,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Analyze runs every stage against document for company and returns the
// report. Stage failures are recorded in the report and never stop the run,
// so the result always holds all seven sections. Once ctx is done the
// remaining stages are recorded as failed without being sent.
func (p *Pipeline) Analyze(ctx context.Context, document, company string) *types.AnalysisReport {
	log := p.log.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"company": company,
	})

	report := types.NewAnalysisReport(company, p.now())
	background := BuildContext(company, document)
	all := Stages()

	fmt.Fprintf(p.progress, "🔍 Starting competitor analysis for: %s\n", company)
	log.Info("analysis started")

	for i, step := range all {
		stageLog := log.WithField("stage", step.Stage)

		if err := ctx.Err(); err != nil {
			report.Sections[step.Stage] = types.Failed("Analysis cancelled: " + context.Cause(ctx).Error())
			stageLog.Warn("stage skipped: analysis cancelled")
			continue
		}

		fmt.Fprintf(p.progress, "%s %d/%d %s\n", step.Icon, i+1, len(all), step.Label)
		stageLog.Infof("step %d/%d", i+1, len(all))

		result := p.runStep(ctx, step, company, background)
		report.Sections[step.Stage] = result
		if result.Success {
			stageLog.WithField("sources", result.SourceCount()).Info("stage complete")
		} else {
			stageLog.Warnf("stage failed: %s", result.Error)
		}

		if i < len(all)-1 {
			p.sleep(ctx, p.delay)
		}
	}

	fmt.Fprintln(p.progress, "✅ Analysis complete!")
	log.WithField("failed", len(report.Failures())).Info("analysis finished")
	return report
}

func (p *Pipeline) runStep(ctx context.Context, step Step, company, background string) types.ResearchResult {
	query, err := RenderQuery(step, company)
	if err != nil {
		return types.Failed(fmt.Sprintf("Analysis failed: rendering query: %v", err))
	}
	return p.researcher.Research(ctx, query, background)
}
