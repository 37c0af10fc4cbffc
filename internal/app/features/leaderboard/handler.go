// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/volunteerhub/volunteerhub/internal/app/store/queries/leaderboard"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/rank"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultLimit caps a leaderboard page when no limit is given.
const DefaultLimit = 10

// MaxLimit is the hard ceiling on rows per request.
const MaxLimit = 100

// Handler serves the rankings.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

// parseMetric returns the requested metric, defaulting to points.
func parseMetric(r *http.Request) (string, bool) {
	metric := query.Get(r, "metric")
	if metric == "" {
		metric = rank.MetricPoints
	}
	return metric, rank.IsValidMetric(metric)
}

// parseWindow converts the period parameter into a [since, until]
// window. Supported periods: all (default), week, month, year.
func parseWindow(r *http.Request) (since, until time.Time, ok bool) {
	switch query.Get(r, "period") {
	case "", "all":
		return time.Time{}, time.Time{}, true
	case "week":
		return time.Now().UTC().AddDate(0, 0, -7), time.Time{}, true
	case "month":
		return time.Now().UTC().AddDate(0, -1, 0), time.Time{}, true
	case "year":
		return time.Now().UTC().AddDate(-1, 0, 0), time.Time{}, true
	}
	return time.Time{}, time.Time{}, false
}

func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "limit"))
	if err != nil || n < 1 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ServeTop handles GET /api/leaderboard.
func (h *Handler) ServeTop(w http.ResponseWriter, r *http.Request) {
	metric, ok := parseMetric(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "metric must be points, projectsCompleted, or hoursVolunteered")
		return
	}
	since, until, ok := parseWindow(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "period must be all, week, month, or year")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := leaderboard.TopN(ctx, h.DB, metric, parseLimit(r), since, until)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]any{
		"metric":  metric,
		"entries": entries,
	})
}

// ServeRank handles GET /api/leaderboard/rank/{id}.
func (h *Handler) ServeRank(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	metric, ok := parseMetric(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "metric must be points, projectsCompleted, or hoursVolunteered")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	standing, err := leaderboard.Rank(ctx, h.DB, userID, metric)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, standing)
}

// ServeCategory handles GET /api/leaderboard/categories/{category}.
func (h *Handler) ServeCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		respond.Fail(w, http.StatusBadRequest, "category is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	leaders, err := leaderboard.CategoryLeaders(ctx, h.DB, category, parseLimit(r))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]any{
		"category": category,
		"leaders":  leaders,
	})
}
