// Command hypecycle manages technologies, collects evidence from upstream
// data sources, runs phase analysis, and renders markdown reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/analysis"
	"github.com/techscope/hypecycle/internal/collector"
	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/report"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/internal/storage/postgres"
	"github.com/techscope/hypecycle/internal/storage/sqlite"
	"github.com/techscope/hypecycle/pkg/types"
)

const usage = `Usage: hypecycle <command> [flags]

Commands:
  add      Register a technology for tracking
  list     List tracked technologies
  collect  Collect evidence records for a technology
  analyze  Run phase analysis for a technology
  report   Render the markdown analysis report
  delete   Remove a technology and its stored data
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg.Logging)

	store, err := openStore(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer store.Close()

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "add":
		err = runAdd(ctx, store, args)
	case "list":
		err = runList(ctx, store, args)
	case "collect":
		err = runCollect(ctx, store, cfg, log, args)
	case "analyze":
		err = runAnalyze(ctx, store, cfg, log, args)
	case "report":
		err = runReport(ctx, store, log, args)
	case "delete":
		err = runDelete(ctx, store, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.StorageEngine {
	case "postgres":
		return postgres.New(cfg.PostgresDSN)
	case "sqlite":
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return sqlite.New(filepath.Join(cfg.DataPath, "hypecycle.db"))
	default:
		return nil, fmt.Errorf("unknown storage engine: %s", cfg.StorageEngine)
	}
}

// resolveTechnology accepts either a numeric ID or an exact name.
func resolveTechnology(ctx context.Context, store storage.TechnologyStore, ref string) (*types.Technology, error) {
	var id int64
	if _, err := fmt.Sscanf(ref, "%d", &id); err == nil && fmt.Sprint(id) == ref {
		return store.GetTechnology(ctx, id)
	}
	return store.GetTechnologyByName(ctx, ref)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func runAdd(ctx context.Context, store storage.Store, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Technology name (required)")
	description := fs.String("description", "", "Short description")
	keywords := fs.String("keywords", "", "Comma-separated search keywords (defaults to the name)")
	excluded := fs.String("exclude", "", "Comma-separated terms to exclude from searches")
	tickers := fs.String("tickers", "", "Comma-separated stock tickers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("add: -name is required")
	}

	kws := splitList(*keywords)
	if len(kws) == 0 {
		kws = []string{*name}
	}
	tech := &types.Technology{
		Name:          *name,
		Description:   *description,
		Keywords:      kws,
		ExcludedTerms: splitList(*excluded),
		Tickers:       splitList(*tickers),
	}
	if err := store.CreateTechnology(ctx, tech); err != nil {
		return err
	}
	fmt.Printf("Added technology %d: %s\n", tech.ID, tech.Name)
	return nil
}

func runList(ctx context.Context, store storage.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	techs, err := store.ListTechnologies(ctx)
	if err != nil {
		return err
	}
	if len(techs) == 0 {
		fmt.Println("No technologies tracked yet. Use 'hypecycle add' to register one.")
		return nil
	}
	for _, tech := range techs {
		fmt.Printf("%4d  %-30s  keywords: %s\n", tech.ID, tech.Name, strings.Join(tech.Keywords, ", "))
	}
	return nil
}

func runCollect(ctx context.Context, store storage.Store, cfg *config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	techRef := fs.String("tech", "", "Technology ID or name (required)")
	streams := fs.String("streams", "", "Comma-separated streams to collect (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *techRef == "" {
		return fmt.Errorf("collect: -tech is required")
	}

	tech, err := resolveTechnology(ctx, store, *techRef)
	if err != nil {
		return err
	}

	selected := make(map[types.Stream]bool)
	if *streams == "" {
		for _, s := range types.AllStreams {
			selected[s] = true
		}
	} else {
		for _, name := range splitList(*streams) {
			stream := types.Stream(name)
			if !validStream(stream) {
				return fmt.Errorf("collect: unknown stream %q", name)
			}
			selected[stream] = true
		}
	}

	client := collector.NewClient(cfg.Collectors, log)
	type source struct {
		stream  types.Stream
		collect func(context.Context, *types.Technology) (*collector.Stats, error)
	}
	sources := []source{
		{types.StreamPaper, collector.NewPaperCollector(client, store, cfg.Collectors, log).Collect},
		{types.StreamPatent, collector.NewPatentCollector(client, store, cfg.Collectors, log).Collect},
		{types.StreamSocial, collector.NewRedditCollector(client, store, cfg.Collectors, log).Collect},
		{types.StreamNews, collector.NewNewsCollector(client, store, cfg.Collectors, log).Collect},
		{types.StreamFinance, collector.NewFinanceCollector(client, store, cfg.Collectors, log).Collect},
	}

	var failed int
	for _, src := range sources {
		if !selected[src.stream] {
			continue
		}
		stats, err := src.collect(ctx, tech)
		if err != nil {
			// One stream failing should not abort the rest of the run.
			log.WithError(err).WithField("stream", src.stream).Error("collection failed")
			failed++
			continue
		}
		fmt.Printf("%-8s  fetched %d, saved %d (%d pages)\n", src.stream, stats.Fetched, stats.Saved, stats.Pages)
	}
	if failed > 0 {
		return fmt.Errorf("collect: %d stream(s) failed", failed)
	}
	return nil
}

func validStream(s types.Stream) bool {
	for _, known := range types.AllStreams {
		if s == known {
			return true
		}
	}
	return false
}

func runAnalyze(ctx context.Context, store storage.Store, cfg *config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	techRef := fs.String("tech", "", "Technology ID or name (required)")
	stream := fs.String("stream", "", "Single stream to analyze (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *techRef == "" {
		return fmt.Errorf("analyze: -tech is required")
	}

	tech, err := resolveTechnology(ctx, store, *techRef)
	if err != nil {
		return err
	}
	thresholds, err := config.LoadThresholds(cfg.Analysis.ThresholdsPath)
	if err != nil {
		return err
	}

	service := analysis.NewService(store, store, thresholds, analysis.WithLogger(log))

	if *stream != "" {
		result, err := service.AnalyzeStream(ctx, tech.ID, types.Stream(*stream))
		if err != nil {
			return err
		}
		printVerdict(*result)
		return nil
	}

	results, skipped, err := service.AnalyzeAll(ctx, tech.ID)
	if err != nil {
		return err
	}
	for _, result := range results {
		printVerdict(result)
	}
	for stream, reason := range skipped {
		fmt.Printf("%-8s  skipped: %v\n", stream, reason)
	}
	return nil
}

func printVerdict(a types.Analysis) {
	fmt.Printf("%-8s  %-30s  confidence %.0f%%  (%d records)\n",
		a.Stream, a.Phase.DisplayName(), a.Confidence*100, a.RecordsAnalyzed)
}

func runReport(ctx context.Context, store storage.Store, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	techRef := fs.String("tech", "", "Technology ID or name (required)")
	outDir := fs.String("out", ".", "Directory to write the report into")
	stdout := fs.Bool("stdout", false, "Print the report instead of writing a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *techRef == "" {
		return fmt.Errorf("report: -tech is required")
	}

	tech, err := resolveTechnology(ctx, store, *techRef)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(store, store, log)
	if *stdout {
		content, err := gen.Generate(ctx, tech.ID)
		if err != nil {
			return err
		}
		fmt.Print(content)
		return nil
	}

	path, err := gen.WriteFile(ctx, tech.ID, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

func runDelete(ctx context.Context, store storage.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	techRef := fs.String("tech", "", "Technology ID or name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *techRef == "" {
		return fmt.Errorf("delete: -tech is required")
	}

	tech, err := resolveTechnology(ctx, store, *techRef)
	if err != nil {
		return err
	}
	if err := store.DeleteTechnology(ctx, tech.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted technology %d: %s\n", tech.ID, tech.Name)
	return nil
}
