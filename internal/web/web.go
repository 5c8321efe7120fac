// Package web exposes the planning engine over a small JSON API. All
// decision logic lives in internal/engine; this layer only assembles
// inputs (plan file + imported ICS records) and serializes results.
package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"tripcal/internal/config"
	"tripcal/internal/ics"
	appLog "tripcal/internal/log"
	"tripcal/internal/model"
	"tripcal/internal/store"
)

// Server serves the planner API on top of the plan file and the
// configured ICS feeds.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux

	// planMu guards the plan and the latest imported ICS records. The
	// engine itself is pure; this is the only mutable state in serving.
	planMu              sync.RWMutex
	plan                *store.Plan
	importedTrips       []model.Event
	importedConstraints []model.Constraint
}

// NewServer constructs a Server and loads the plan file. A missing
// plan file starts empty rather than failing.
func NewServer(cfg *config.Config, debug bool) (*Server, error) {
	plan, err := store.Load(cfg.PlanPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:   cfg,
		debug: debug,
		mux:   http.NewServeMux(),
		plan:  plan,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/score", s.handleScore)
	s.mux.HandleFunc("/api/suggestions", s.handleSuggestions)
	s.mux.HandleFunc("/api/conflicts", s.handleConflicts)
	s.mux.HandleFunc("/api/consolidations", s.handleConsolidations)
	s.mux.HandleFunc("/api/plan", s.handlePlan)
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth rather than locking
	// everyone out with unmatchable credentials.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="tripcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// snapshot assembles the engine inputs: active (non-archived) plan
// trips plus imported trips, and plan constraints plus imported ones.
// The engine treats these as read-only, so sharing the backing arrays
// with copies of the slices is safe.
func (s *Server) snapshot() ([]model.Event, []model.Constraint) {
	s.planMu.RLock()
	defer s.planMu.RUnlock()

	events := s.plan.ActiveEvents()
	events = append(events, s.importedTrips...)

	constraints := make([]model.Constraint, 0, len(s.plan.Constraints)+len(s.importedConstraints))
	constraints = append(constraints, s.plan.Constraints...)
	constraints = append(constraints, s.importedConstraints...)

	return events, constraints
}

// ReloadPlan re-reads the plan file, keeping the previous plan on
// error.
func (s *Server) ReloadPlan() {
	plan, err := store.Load(s.cfg.PlanPath)
	if err != nil {
		appLog.Error("plan reload failed, keeping previous plan", err, "path", s.cfg.PlanPath)
		return
	}

	s.planMu.Lock()
	s.plan = plan
	s.planMu.Unlock()

	appLog.Info("plan reloaded", "path", s.cfg.PlanPath, "trips", len(plan.Trips), "constraints", len(plan.Constraints))
}

// RefreshICS fetches and converts all configured feeds, replacing the
// imported record sets. Recurring constraints expand over roughly the
// past month through the next thirteen months.
func (s *Server) RefreshICS(ctx context.Context) {
	if len(s.cfg.ICS) == 0 {
		return
	}

	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, src := range s.cfg.ICS {
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
	if s.debug {
		cacheDir = "./cache/ics-cache"
	}
	fetcher := ics.NewFetcher(cacheDir)

	results, errs := fetcher.FetchAll(ctx, sources)
	for _, err := range errs {
		appLog.Error("ics refresh: fetch failed", err)
	}

	today := model.DateOf(time.Now())
	importCfg := ics.ImportConfig{
		HorizonStart: today.AddDays(-31),
		HorizonEnd:   today.AddDays(400),
		KnownType: func(id string) bool {
			_, ok := s.cfg.Types[id]
			return ok
		},
	}

	var trips []model.Event
	var constraints []model.Constraint
	for _, res := range results {
		items, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			continue
		}
		switch res.Source.Kind {
		case "trips":
			trips = append(trips, ics.ToTrips(items, importCfg)...)
		default:
			constraints = append(constraints, ics.ToConstraints(items, importCfg)...)
		}
	}

	s.planMu.Lock()
	s.importedTrips = trips
	s.importedConstraints = constraints
	s.planMu.Unlock()

	appLog.Info("ics refresh completed", "trips", len(trips), "constraints", len(constraints))
}

// Run serves until ctx is canceled. It refreshes ICS feeds once at
// startup and then on the configured cron schedule, and reloads the
// plan when the file changes on disk.
func (s *Server) Run(ctx context.Context) error {
	s.RefreshICS(ctx)

	c := cron.New()
	if s.cfg.RefreshCron != "" && len(s.cfg.ICS) > 0 {
		if _, err := c.AddFunc(s.cfg.RefreshCron, func() { s.RefreshICS(ctx) }); err != nil {
			appLog.Error("invalid refresh cron spec, periodic refresh disabled", err, "spec", s.cfg.RefreshCron)
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	if watcher, err := fsnotify.NewWatcher(); err != nil {
		appLog.Error("plan watcher unavailable", err)
	} else {
		defer watcher.Close()
		// Watch the directory: editors and atomic saves replace the
		// file, which drops a watch placed on the file itself.
		if err := watcher.Add(filepath.Dir(s.cfg.PlanPath)); err != nil {
			appLog.Error("plan watch failed", err, "path", s.cfg.PlanPath)
		} else {
			go s.watchPlan(ctx, watcher)
		}
	}

	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) watchPlan(ctx context.Context, watcher *fsnotify.Watcher) {
	target := filepath.Clean(s.cfg.PlanPath)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			appLog.Debug("plan file changed", "op", ev.Op.String())
			s.ReloadPlan()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			appLog.Error("plan watcher error", err)
		}
	}
}
