package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/codewithboateng/diguard/internal/analysis"
	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/reporting"
	"github.com/codewithboateng/diguard/internal/rules"
	"github.com/codewithboateng/diguard/internal/security"
	"github.com/codewithboateng/diguard/internal/shared"
	"github.com/codewithboateng/diguard/internal/storage"
	"github.com/codewithboateng/diguard/internal/watch"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "rules":
		rulesCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "useradd":
		useraddCmd(os.Args[2:])
	case "version":
		fmt.Println("diguard", version, "model:", model.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `diguard - dependency-injection convention checker

Usage:
  diguard analyze --path <src> [--out ./reports] [--db ./diguard.db] [--rules pack.yaml] [--workers N] [--watch] [--config ./configs/diguard.yaml]
  diguard report  [--run <run-id>] [--out ./reports] [--db ./diguard.db] [--config ...]
  diguard diff    --base <run-id> --head <run-id> [--out ./reports] [--db ./diguard.db] [--config ...]
  diguard rules   [--rules pack.yaml] [--json] [--config ...]
  diguard serve   [--addr :8080] [--db ./diguard.db] [--config ...]
  diguard useradd --username <name> --password <pw> [--role admin|viewer] [--db ./diguard.db] [--config ...]
  diguard version
`)
}

// loadConfig loads the config and installs the logger; a bad config file
// is fatal.
func loadConfig(cmd, path string) shared.Config {
	cfg, err := shared.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(2)
	}
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	return cfg
}

func openDB(path string) *storage.DB {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	return db
}

func analyzeCmd(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("path", "", "Source directory or model file")
	outDir := fs.String("out", "", "Output directory for reports")
	dbPath := fs.String("db", "", "SQLite database path")
	pack := fs.String("rules", "", "YAML rule pack (optional)")
	workers := fs.Int("workers", -1, "Parallel evaluation workers (0/1 = sequential)")
	watchMode := fs.Bool("watch", false, "Re-analyze on file changes")
	_ = fs.Parse(args)

	cfg := loadConfig("analyze", *configPath)

	// precedence: flags > env > config > defaults
	sources := cfg.Analysis.Sources
	if *inPath != "" {
		sources = []string{*inPath}
	}
	if *outDir != "" {
		cfg.Reporting.OutDir = *outDir
	}
	if *dbPath != "" {
		cfg.Database.DSN = *dbPath
	}
	if *pack != "" {
		cfg.Rules.Pack = *pack
	}
	if *workers >= 0 {
		cfg.Analysis.Workers = *workers
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "analyze: --path (or analysis.sources in config) is required")
		os.Exit(2)
	}
	if *watchMode && len(sources) != 1 {
		fmt.Fprintln(os.Stderr, "analyze: --watch needs exactly one source")
		os.Exit(2)
	}

	db := openDB(cfg.Database.DSN)
	defer db.Close()

	p, err := analysis.New(cfg, db, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		runWatch(ctx, p, sources[0], cfg.Analysis.Exclude)
		return
	}

	failed := false
	for _, src := range sources {
		res, err := p.Analyze(ctx, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "analyze:", err)
			os.Exit(2)
		}
		if err := reporting.WriteText(os.Stdout, &res.Run); err != nil {
			slog.Error("write summary", "err", err)
		}
		fmt.Printf("  JSON: %s\n  HTML: %s\n  DB: %s\n", res.JSONPath, res.HTMLPath, filepath.Clean(cfg.Database.DSN))
		failed = failed || res.Run.Report.HasFailures()
	}
	if failed {
		os.Exit(1)
	}
}

func runWatch(ctx context.Context, p *analysis.Pipeline, src string, ignore []string) {
	analyzeOnce := func(ctx context.Context) {
		res, err := p.Analyze(ctx, src)
		if err != nil {
			// the pipeline already logged it; keep watching
			return
		}
		_ = reporting.WriteText(os.Stdout, &res.Run)
	}
	analyzeOnce(ctx)

	w, err := watch.New(src, watch.Options{Ignore: ignore})
	if err != nil {
		slog.Error("watch setup failed", "err", err)
		os.Exit(1)
	}
	slog.Info("watching for changes", "root", src)
	err = w.Run(ctx, func(ctx context.Context, paths []string) {
		slog.Info("change detected", "files", len(paths))
		analyzeOnce(ctx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("watch stopped", "err", err)
		os.Exit(1)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "", "Run ID (default: latest)")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg := loadConfig("report", *configPath)
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db := openDB(*dbPath)
	defer db.Close()

	var run model.Run
	var err error
	if *runID == "" {
		run, err = db.LoadLatestRun()
	} else {
		run, err = db.LoadRun(*runID)
	}
	if err != nil {
		slog.Error("load run error", "run", *runID, "err", err)
		os.Exit(1)
	}
	jsonPath, err := reporting.WriteJSON(run.ID, *outDir, &run)
	if err != nil {
		slog.Error("write json report", "err", err)
		os.Exit(1)
	}
	htmlPath, err := reporting.WriteHTML(run.ID, *outDir, &run)
	if err != nil {
		slog.Error("write html report", "err", err)
		os.Exit(1)
	}
	_ = reporting.WriteText(os.Stdout, &run)
	fmt.Printf("  JSON: %s\n  HTML: %s\n", jsonPath, htmlPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg := loadConfig("diff", *configPath)
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}

	db := openDB(*dbPath)
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	path, d, err := reporting.WriteDiffJSON(*outDir, &br, &hr)
	if err != nil {
		slog.Error("write diff", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK: new=%d removed=%d changed=%d\n  %s\n",
		len(d.New), len(d.Removed), len(d.Changed), path)
}

func rulesCmd(args []string) {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	pack := fs.String("rules", "", "YAML rule pack (optional)")
	asJSON := fs.Bool("json", false, "Print as JSON")
	_ = fs.Parse(args)

	cfg := loadConfig("rules", *configPath)
	if *pack != "" {
		cfg.Rules.Pack = *pack
	}
	p, err := analysis.New(cfg, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rules:", err)
		os.Exit(2)
	}

	if *asJSON {
		type item struct {
			model.RuleInfo
			Description string `json:"description"`
			Disabled    bool   `json:"disabled,omitempty"`
		}
		out := make([]item, 0, len(p.Rules))
		for _, r := range p.Rules {
			out = append(out, item{RuleInfo: r.Info(), Description: r.Describe(), Disabled: p.Settings.IsDisabled(r.ID)})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tSTATE\tDESCRIPTION")
	for _, r := range p.Rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Priority, ruleState(p.Settings, r), r.Describe())
	}
	_ = tw.Flush()
}

func ruleState(s rules.Settings, r rules.Rule) string {
	if s.IsDisabled(r.ID) {
		return "disabled"
	}
	return "enabled"
}

func useraddCmd(args []string) {
	fs := flag.NewFlagSet("useradd", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	username := fs.String("username", "", "User name")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "viewer", "Role: admin|viewer")
	_ = fs.Parse(args)

	cfg := loadConfig("useradd", *configPath)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "useradd: --username and --password are required")
		os.Exit(2)
	}
	if *role != "admin" && *role != "viewer" {
		fmt.Fprintln(os.Stderr, "useradd: --role must be admin or viewer")
		os.Exit(2)
	}
	hash, err := security.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "useradd:", err)
		os.Exit(2)
	}

	db := openDB(*dbPath)
	defer db.Close()
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user", "err", err)
		os.Exit(1)
	}
	_ = db.LogAudit("cli", "user:create", *username, map[string]any{"role": *role, "at": time.Now().UTC()})
	fmt.Printf("User OK\n  ID: %d\n  Name: %s\n  Role: %s\n", id, *username, *role)
}
