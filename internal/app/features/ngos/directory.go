// internal/app/features/ngos/directory.go
package ngos

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	ngostore "github.com/volunteerhub/volunteerhub/internal/app/store/ngos"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/app/system/htmlsanitize"
	"github.com/volunteerhub/volunteerhub/internal/app/system/inputval"
	"github.com/volunteerhub/volunteerhub/internal/app/system/paging"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ngoID parses the {id} route parameter.
func ngoID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// ServeList handles GET /api/ngos. Supports category, country, search
// and verification filters plus start/limit paging.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	limit := paging.ParseLimit(r)

	rows, err := h.NGOs.List(ctx, ngostore.ListFilter{
		Category:           query.Get(r, "category"),
		Country:            query.Get(r, "country"),
		VerificationStatus: query.Get(r, "verification"),
		Search:             query.Get(r, "search"),
	}, int64(start-1), paging.LimitPlusOne(limit))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	page := paging.TrimPage(&rows, limit)
	respond.OK(w, map[string]any{
		"ngos":     rows,
		"has_next": page.HasNext,
	})
}

// ServeNGO handles GET /api/ngos/{id}.
func (h *Handler) ServeNGO(w http.ResponseWriter, r *http.Request) {
	id, ok := ngoID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid ngo id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ngo, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, ngo)
}

type reviewRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// HandleReview handles POST /api/ngos/{id}/reviews. One review per user;
// a second submission replaces the first.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := ngoID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid ngo id")
		return
	}
	su, _ := auth.CurrentUser(r)
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid session user")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !inputval.IsValidStars(req.Stars) {
		respond.Fail(w, http.StatusBadRequest, "stars must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ngo, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if ngo.OwnerID == userID {
		respond.Fail(w, http.StatusForbidden, "cannot review your own organization")
		return
	}

	updated, err := h.NGOs.AddReview(ctx, id, models.Review{
		UserID:  userID,
		Stars:   req.Stars,
		Comment: htmlsanitize.Sanitize(req.Comment),
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, updated.Rating)
}

// HandleFollow handles POST /api/ngos/{id}/follow.
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, true)
}

// HandleUnfollow handles DELETE /api/ngos/{id}/follow.
func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, false)
}

func (h *Handler) setFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	id, ok := ngoID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid ngo id")
		return
	}
	su, _ := auth.CurrentUser(r)
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid session user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if follow {
		err = h.NGOs.Follow(ctx, id, userID)
	} else {
		err = h.NGOs.Unfollow(ctx, id, userID)
	}
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]bool{"following": follow})
}
