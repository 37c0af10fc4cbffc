// internal/app/features/admin/console.go
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/volunteerhub/volunteerhub/internal/app/store/audit"
	"github.com/volunteerhub/volunteerhub/internal/app/store/queries/adminstats"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/paging"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeStats handles GET /api/admin/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := adminstats.Collect(ctx, h.DB)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, stats)
}

// ServeUsers handles GET /api/admin/users with role/status/search
// filters and start/limit paging.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := userstore.ListFilter{
		Role:   query.Get(r, "role"),
		Status: query.Get(r, "status"),
		Search: query.Get(r, "search"),
	}

	start := paging.ParseStart(r)
	limit := paging.ParseLimit(r)

	rows, err := h.Users.List(ctx, filter, int64(start-1), paging.LimitPlusOne(limit))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	page := paging.TrimPage(&rows, limit)
	respond.OK(w, map[string]any{
		"users":    rows,
		"has_next": page.HasNext,
	})
}

// ServeAudit handles GET /api/admin/audit with category/event/user/since
// filters, newest first.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := audit.Filter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event"),
	}
	if s := query.Get(r, "user"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid user id")
			return
		}
		filter.UserID = &id
	}
	if s := query.Get(r, "since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		filter.Since = since
	}

	events, err := h.Audit.List(ctx, filter, paging.LimitPlusOne(paging.ParseLimit(r)))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]any{"events": events})
}
