package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tripcal/internal/config"
	"tripcal/internal/engine"
	"tripcal/internal/ics"
	appLog "tripcal/internal/log"
	"tripcal/internal/model"
	"tripcal/internal/store"
	"tripcal/internal/week"
	"tripcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	debug      bool

	serve bool

	suggestQuarter int
	suggestYear    int
	location       string

	scoreWeek   string
	conflicts   bool
	consolidate bool
	doImport    bool
	exportPath  string
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if !flags.debug {
		appLog.SetLevelFromString(conf.LogLevel)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"plan_path", conf.PlanPath,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"type_count", len(conf.Types),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.serve {
		runServe(ctx, conf, flags)
		return
	}

	plan, err := store.Load(conf.PlanPath)
	if err != nil {
		appLog.Error("failed to load plan", err, "path", conf.PlanPath)
		os.Exit(1)
	}

	switch {
	case flags.suggestQuarter != 0:
		runSuggest(conf, plan, flags)
	case flags.scoreWeek != "":
		runScore(conf, plan, flags)
	case flags.conflicts:
		runConflicts(conf, plan)
	case flags.consolidate:
		runConsolidate(plan)
	case flags.doImport:
		runImport(ctx, conf, plan, flags.debug)
	case flags.exportPath != "":
		runExport(plan, flags.exportPath)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runServe(ctx context.Context, conf *config.Config, flags flagConfig) {
	srv, err := web.NewServer(conf, flags.debug)
	if err != nil {
		appLog.Error("failed to start server", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("server exited", err)
		os.Exit(1)
	}
	appLog.Info("tripcal exiting")
}

func runSuggest(conf *config.Config, plan *store.Plan, flags flagConfig) {
	if flags.location == "" {
		fmt.Fprintln(os.Stderr, "suggest: -location is required")
		os.Exit(2)
	}
	year := flags.suggestYear
	if year == 0 {
		year = time.Now().Year()
	}

	suggestions, err := engine.SuggestionsForQuarter(
		flags.suggestQuarter, year, flags.location,
		plan.ActiveEvents(), plan.Constraints, conf.HardStop(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "suggest:", err)
		os.Exit(2)
	}

	if len(suggestions) == 0 {
		fmt.Printf("No open weeks for %s in Q%d %d.\n", flags.location, flags.suggestQuarter, year)
		return
	}
	fmt.Printf("Top weeks for %s in Q%d %d:\n", flags.location, flags.suggestQuarter, year)
	for i, sug := range suggestions {
		fmt.Printf("%d. Week of %s (score %d, %s)\n", i+1, sug.Week, sug.Score, sug.Action)
		for _, reason := range sug.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}
}

func runScore(conf *config.Config, plan *store.Plan, flags flagConfig) {
	if flags.location == "" {
		fmt.Fprintln(os.Stderr, "score: -location is required")
		os.Exit(2)
	}
	anchor, err := model.ParseDate(flags.scoreWeek)
	if err != nil {
		fmt.Fprintln(os.Stderr, "score:", err)
		os.Exit(2)
	}

	result := engine.ScoreWeek(anchor, flags.location, plan.ActiveEvents(), plan.Constraints, conf.HardStop())
	fmt.Printf("Week of %s for %s: score %d, %s\n",
		week.MondayOf(anchor), flags.location, result.Score, result.Action)
	for _, reason := range result.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
}

func runConflicts(conf *config.Config, plan *store.Plan) {
	conflicts := engine.DetectConflicts(plan.ActiveEvents(), plan.Constraints, conf.HardStop())
	if len(conflicts) == 0 {
		fmt.Println("No conflicts.")
		return
	}
	for _, c := range conflicts {
		fmt.Printf("[%s] %s\n", c.Kind, c.Message)
	}
	os.Exit(1)
}

func runConsolidate(plan *store.Plan) {
	opportunities := engine.FindConsolidationOpportunities(plan.ActiveEvents())
	if len(opportunities) == 0 {
		fmt.Println("No consolidation opportunities.")
		return
	}
	for _, o := range opportunities {
		fmt.Printf("Week of %s: %q and %q are both near %s\n",
			o.Week, o.Events[0].Title, o.Events[1].Title, o.Location)
	}
}

// runImport fetches all configured ICS feeds and merges their records
// into the plan file, replacing earlier imports from the same source.
func runImport(ctx context.Context, conf *config.Config, plan *store.Plan, debug bool) {
	if len(conf.ICS) == 0 {
		fmt.Println("No ICS sources configured.")
		return
	}

	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, src := range conf.ICS {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			id = src.Name
		}
		sources = append(sources, ics.Source{
			ID:          id,
			URL:         src.URL,
			Kind:        src.Kind,
			DefaultType: src.DefaultType,
		})
	}

	cacheDir := "./var/ics-cache"
	if debug {
		cacheDir = "./cache/ics-cache"
	}
	results, errs := ics.NewFetcher(cacheDir).FetchAll(ctx, sources)
	for _, err := range errs {
		appLog.Error("import: fetch failed", err)
	}

	today := model.DateOf(time.Now())
	importCfg := ics.ImportConfig{
		HorizonStart: today.AddDays(-31),
		HorizonEnd:   today.AddDays(400),
		KnownType: func(id string) bool {
			_, ok := conf.Types[id]
			return ok
		},
	}

	imported := 0
	for _, res := range results {
		items, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			continue
		}
		// Drop previous imports from this source before re-adding.
		prefix := res.Source.ID + "/"
		plan.Trips = withoutIDPrefix(plan.Trips, prefix)
		plan.Constraints = constraintsWithoutIDPrefix(plan.Constraints, prefix)

		switch res.Source.Kind {
		case "trips":
			trips := ics.ToTrips(items, importCfg)
			plan.Trips = append(plan.Trips, trips...)
			imported += len(trips)
		default:
			constraints := ics.ToConstraints(items, importCfg)
			plan.Constraints = append(plan.Constraints, constraints...)
			imported += len(constraints)
		}
	}

	if err := store.Save(conf.PlanPath, plan); err != nil {
		appLog.Error("import: plan save failed", err, "path", conf.PlanPath)
		os.Exit(1)
	}
	fmt.Printf("Imported %d records from %d sources into %s\n", imported, len(sources), conf.PlanPath)
}

func withoutIDPrefix(trips []model.Event, prefix string) []model.Event {
	out := trips[:0]
	for _, t := range trips {
		if !strings.HasPrefix(t.ID, prefix) {
			out = append(out, t)
		}
	}
	return out
}

func constraintsWithoutIDPrefix(constraints []model.Constraint, prefix string) []model.Constraint {
	out := constraints[:0]
	for _, c := range constraints {
		if !strings.HasPrefix(c.ID, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func runExport(plan *store.Plan, path string) {
	body := ics.ExportTrips(plan.ActiveEvents())
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		appLog.Error("export failed", err, "path", path)
		os.Exit(1)
	}
	fmt.Printf("Exported %d trips to %s\n", len(plan.ActiveEvents()), path)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./tripcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging and local cache paths")

	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP API server")

	flag.IntVar(&cfg.suggestQuarter, "suggest", 0, "Suggest weeks for the given quarter (1-4)")
	flag.IntVar(&cfg.suggestYear, "year", 0, "Year for -suggest (default: current year)")
	flag.StringVar(&cfg.location, "location", "", "Desired location for -suggest / -score")
	flag.StringVar(&cfg.scoreWeek, "score", "", "Score the week containing the given ISO date")

	flag.BoolVar(&cfg.conflicts, "conflicts", false, "Report conflicts in the plan and exit")
	flag.BoolVar(&cfg.consolidate, "consolidate", false, "Report consolidation opportunities and exit")
	flag.BoolVar(&cfg.doImport, "import", false, "Fetch ICS sources and merge them into the plan file")
	flag.StringVar(&cfg.exportPath, "export", "", "Export trips as ICS to the given file")

	flag.Parse()

	return cfg
}
