// internal/app/features/users/profile.go
package users

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	userstore "github.com/volunteerhub/volunteerhub/internal/app/store/users"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/gamification"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userID parses the {id} route parameter.
func userID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// isSelfOrAdmin reports whether the session user is id or an admin.
func isSelfOrAdmin(r *http.Request, id primitive.ObjectID) bool {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	return su.Role == models.RoleAdmin || su.ID == id.Hex()
}

// ServeProfile handles GET /api/users/{id}. Statistics and points are
// included only when the profile is public or the requester is the
// owner or an admin.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	user.Password = ""

	if !user.StatsVisible && !isSelfOrAdmin(r, id) {
		user.Points = models.Points{}
		user.Statistics = models.UserStatistics{}
		user.Badges = nil
	}

	respond.OK(w, user)
}

type profileUpdateRequest struct {
	FullName     *string `json:"full_name"`
	StatsVisible *bool   `json:"stats_visible"`
}

// HandleUpdateProfile handles PATCH /api/users/{id}. Users edit their
// own profile; admins may edit anyone's. Only the enumerated fields are
// writable.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !isSelfOrAdmin(r, id) {
		respond.Fail(w, http.StatusForbidden, "cannot edit another user's profile")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FullName == nil && req.StatsVisible == nil {
		respond.Fail(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}
	if req.FullName != nil && *req.FullName == "" {
		respond.Fail(w, http.StatusBadRequest, "full name cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, id, userstore.ProfileUpdate{
		FullName:     req.FullName,
		StatsVisible: req.StatsVisible,
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	user.Password = ""
	respond.OK(w, user)
}

// ServePointHistory handles GET /api/users/{id}/points. Optional since
// and until query parameters (RFC 3339) window the ledger.
func (h *Handler) ServePointHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !isSelfOrAdmin(r, id) {
		respond.Fail(w, http.StatusForbidden, "point history is private")
		return
	}

	var since, until time.Time
	if s := query.Get(r, "since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = t
	}
	if s := query.Get(r, "until"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "until must be RFC 3339")
			return
		}
		until = t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entries, err := h.Users.PointHistory(ctx, id, since, until)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	total := 0
	for _, e := range entries {
		total += e.Amount
	}
	respond.OK(w, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

// ServeBadges handles GET /api/users/{id}/badges: the earned badge set
// plus the display tier derived from the lifetime total.
func (h *Handler) ServeBadges(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	if !user.StatsVisible && !isSelfOrAdmin(r, id) {
		respond.Fail(w, http.StatusForbidden, "badges are private")
		return
	}

	respond.OK(w, map[string]any{
		"badges": user.Badges,
		"tier":   gamification.Tier(user.Points.Total),
	})
}
