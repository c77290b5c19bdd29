// Package analysis ties scanning, rule evaluation, waivers, persistence
// and report output into one run.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codewithboateng/diguard/internal/metrics"
	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/reporting"
	"github.com/codewithboateng/diguard/internal/rules"
	"github.com/codewithboateng/diguard/internal/rulesdsl"
	"github.com/codewithboateng/diguard/internal/scanner"
	"github.com/codewithboateng/diguard/internal/shared"
)

// Store is what a pipeline needs from persistence.
type Store interface {
	SaveRun(run *model.Run) error
	ListWaivers(activeOnly bool) ([]model.Waiver, error)
}

type Pipeline struct {
	Rules    []rules.Rule
	Settings rules.Settings
	Scan     scanner.Options
	Workers  int
	OutDir   string // empty disables report files

	Store   Store            // optional
	Metrics *metrics.Metrics // optional

	Now   func() time.Time
	NewID func() string
}

type Result struct {
	Run         model.Run
	Diagnostics scanner.Diagnostics
	JSONPath    string
	HTMLPath    string
}

// New builds a pipeline from configuration: the convention rules, then the
// optional rule pack.
func New(cfg shared.Config, store Store, m *metrics.Metrics) (*Pipeline, error) {
	rs, err := cfg.Conventions.Rules()
	if err != nil {
		return nil, err
	}
	if cfg.Rules.Pack != "" {
		extra, err := rulesdsl.Load(cfg.Rules.Pack)
		if err != nil {
			return nil, err
		}
		rs = append(rs, extra...)
	}
	settings, err := rules.NewSettings(cfg.Rules.Disabled, cfg.Rules.MinSeverity)
	if err != nil {
		return nil, fmt.Errorf("rules.min_severity: %w", err)
	}
	return &Pipeline{
		Rules:    rs,
		Settings: settings,
		Scan:     scanner.Options{Include: cfg.Analysis.Include, Exclude: cfg.Analysis.Exclude},
		Workers:  cfg.Analysis.Workers,
		OutDir:   cfg.Reporting.OutDir,
		Store:    store,
		Metrics:  m,
	}, nil
}

func NewRunID() string { return "run-" + uuid.NewString() }

// Analyze scans source and evaluates it. A model error or a storage
// failure aborts the run; violations never do.
func (p *Pipeline) Analyze(ctx context.Context, source string) (Result, error) {
	now, newID := p.Now, p.NewID
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = NewRunID
	}
	start := now()

	res, err := p.analyze(ctx, source, newID())
	if err != nil {
		if p.Metrics != nil {
			p.Metrics.ObserveError()
		}
		slog.Error("analysis failed", "source", source, "err", err)
		return res, err
	}
	if p.Metrics != nil {
		p.Metrics.ObserveRun(&res.Run, now().Sub(start))
	}
	slog.Info("analysis complete",
		"run", res.Run.ID,
		"classes", len(res.Run.Classes),
		"violations", len(res.Run.Report.Violations),
		"blocking", res.Run.Report.Blocking(),
		"waived", res.Run.Report.Waived,
	)
	return res, nil
}

func (p *Pipeline) analyze(ctx context.Context, source, id string) (Result, error) {
	run, diags, err := scanner.Scan(ctx, source, p.Scan)
	res := Result{Diagnostics: diags}
	if err != nil {
		return res, err
	}
	for _, w := range diags.Warnings {
		slog.Warn("scan", "msg", w)
	}
	run.ID = id
	if p.Now != nil {
		run.StartedAt = p.Now().UTC()
	}

	active := p.Settings.Select(p.Rules)
	report, err := rules.Run(active, run.Classes, rules.WithWorkers(p.Workers))
	if err != nil {
		return res, err
	}

	if p.Store != nil {
		ws, err := p.Store.ListWaivers(true)
		if err != nil {
			return res, fmt.Errorf("load waivers: %w", err)
		}
		report = rules.ApplyWaivers(report, ws, run.StartedAt)
	}
	run.Report = report.AtLeast(p.Settings.MinSeverity)
	run.Context = model.Context{
		MinSeverity:   string(p.Settings.MinSeverity),
		DisabledRules: p.Settings.DisabledIDs(p.Rules),
		Rules:         rules.Infos(active),
	}
	res.Run = run

	if p.Store != nil {
		if err := p.Store.SaveRun(&res.Run); err != nil {
			return res, fmt.Errorf("save run: %w", err)
		}
	}
	if p.OutDir != "" {
		if res.JSONPath, err = reporting.WriteJSON(run.ID, p.OutDir, &res.Run); err != nil {
			return res, fmt.Errorf("write json report: %w", err)
		}
		if res.HTMLPath, err = reporting.WriteHTML(run.ID, p.OutDir, &res.Run); err != nil {
			return res, fmt.Errorf("write html report: %w", err)
		}
	}
	return res, nil
}
