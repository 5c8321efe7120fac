package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tripcal/internal/engine"
	appLog "tripcal/internal/log"
	"tripcal/internal/model"
	"tripcal/internal/store"
	"tripcal/internal/week"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleScore scores one candidate week.
//
// GET /api/score?week=2025-03-17&location=London
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	anchor, err := model.ParseDate(q.Get("week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be an ISO date (YYYY-MM-DD)")
		return
	}
	location := q.Get("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	events, constraints := s.snapshot()
	result := engine.ScoreWeek(anchor, location, events, constraints, s.cfg.HardStop())

	writeJSON(w, http.StatusOK, scoreResponse{
		Week:        week.MondayOf(anchor).String(),
		Location:    location,
		ScoreResult: result,
	})
}

// handleSuggestions ranks candidate weeks for a quarter.
//
// GET /api/suggestions?quarter=3&year=2025&location=London
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	quarter := parseIntDefault(q.Get("quarter"), 0)
	year := parseIntDefault(q.Get("year"), time.Now().Year())
	location := q.Get("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	events, constraints := s.snapshot()
	suggestions, err := engine.SuggestionsForQuarter(quarter, year, location, events, constraints, s.cfg.HardStop())
	if err != nil {
		if errors.Is(err, week.ErrInvalidQuarter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("suggestions failed", err)
		writeError(w, http.StatusInternalServerError, "suggestion ranking failed")
		return
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{
		Quarter:     quarter,
		Year:        year,
		Location:    location,
		Suggestions: suggestions,
	})
}

// handleConflicts reports hard-constraint violations and
// double-bookings across the current plan.
func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	events, constraints := s.snapshot()
	conflicts := engine.DetectConflicts(events, constraints, s.cfg.HardStop())
	writeJSON(w, http.StatusOK, conflictsResponse{Conflicts: conflicts})
}

// handleConsolidations reports same-week same-location trip pairs.
func (s *Server) handleConsolidations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	events, _ := s.snapshot()
	opportunities := engine.FindConsolidationOpportunities(events)
	writeJSON(w, http.StatusOK, consolidationsResponse{Opportunities: opportunities})
}

// handlePlan serves the plan document (GET) and appends a trip (POST).
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.planMu.RLock()
		plan := *s.plan
		s.planMu.RUnlock()
		writeJSON(w, http.StatusOK, plan)

	case http.MethodPost:
		var trip model.Event
		if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
			writeError(w, http.StatusBadRequest, "invalid trip JSON: "+err.Error())
			return
		}
		if trip.StartDate.IsZero() {
			writeError(w, http.StatusBadRequest, "start_date is required")
			return
		}
		if !trip.EndDate.IsZero() && trip.EndDate.Before(trip.StartDate) {
			writeError(w, http.StatusBadRequest, "end_date precedes start_date")
			return
		}
		if trip.ID == "" {
			trip.ID = store.NewID()
		}
		// Flexible trips must sit on a Monday; normalization is this
		// layer's job, the engine assumes it already happened.
		if trip.EndDate.IsZero() {
			trip.StartDate = week.MondayOf(trip.StartDate)
			trip.IsFixed = false
			if trip.DurationWeeks <= 0 {
				trip.DurationWeeks = 1
			}
		} else {
			trip.IsFixed = true
		}

		s.planMu.Lock()
		s.plan.Trips = append(s.plan.Trips, trip)
		plan := *s.plan
		s.planMu.Unlock()

		if err := store.Save(s.cfg.PlanPath, &plan); err != nil {
			appLog.Error("plan save failed", err, "path", s.cfg.PlanPath)
			writeError(w, http.StatusInternalServerError, "failed to persist plan")
			return
		}
		writeJSON(w, http.StatusCreated, trip)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type scoreResponse struct {
	Week     string `json:"week"`
	Location string `json:"location"`
	model.ScoreResult
}

type suggestionsResponse struct {
	Quarter     int                `json:"quarter"`
	Year        int                `json:"year"`
	Location    string             `json:"location"`
	Suggestions []model.Suggestion `json:"suggestions"`
}

type conflictsResponse struct {
	Conflicts []model.Conflict `json:"conflicts"`
}

type consolidationsResponse struct {
	Opportunities []model.Opportunity `json:"opportunities"`
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
