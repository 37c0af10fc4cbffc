// internal/app/features/projects/crud.go
package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	projectstore "github.com/volunteerhub/volunteerhub/internal/app/store/projects"
	"github.com/volunteerhub/volunteerhub/internal/app/system/htmlsanitize"
	"github.com/volunteerhub/volunteerhub/internal/app/system/paging"
	"github.com/volunteerhub/volunteerhub/internal/app/system/respond"
	"github.com/volunteerhub/volunteerhub/internal/app/system/timeouts"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Skills      []string  `json:"skills"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// HandleCreate handles POST /api/projects. NGO accounts create projects
// for the organization they own; the project starts as a draft.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := sessionUserID(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respond.Fail(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ngo, err := h.NGOs.GetByOwner(ctx, ownerID)
	if err != nil {
		respond.Fail(w, http.StatusForbidden, "no organization found for this account")
		return
	}

	created, err := h.Projects.Create(ctx, models.Project{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Category:    req.Category,
		Location:    req.Location,
		NGOID:       ngo.ID,
		Requirements: models.ProjectRequirements{
			Volunteers: models.VolunteerCapacity{Total: req.Capacity},
			Skills:     req.Skills,
		},
		Timeline: models.ProjectTimeline{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
	})
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.Created(w, created)
}

// ServeList handles GET /api/projects with status/category/search/ngo
// filters and start/limit paging.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := projectstore.ListFilter{
		Status:   query.Get(r, "status"),
		Category: query.Get(r, "category"),
		Search:   query.Get(r, "search"),
	}
	if s := query.Get(r, "ngo"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid ngo id")
			return
		}
		filter.NGOID = id
	}

	start := paging.ParseStart(r)
	limit := paging.ParseLimit(r)

	rows, err := h.Projects.List(ctx, filter, int64(start-1), paging.LimitPlusOne(limit))
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}

	page := paging.TrimPage(&rows, limit)
	respond.OK(w, map[string]any{
		"projects": rows,
		"has_next": page.HasNext,
	})
}

// ServeProject handles GET /api/projects/{id}.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, p)
}

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	Skills      *[]string  `json:"skills"`
	Capacity    *int       `json:"capacity"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

// HandleUpdate handles PATCH /api/projects/{id}. Profile fields and the
// status each go through their enumerated update path.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, p) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	if req.Description != nil {
		clean := htmlsanitize.Sanitize(*req.Description)
		req.Description = &clean
	}

	upd := projectstore.ProfileUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Skills:      req.Skills,
		Capacity:    req.Capacity,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if upd != (projectstore.ProfileUpdate{}) {
		if err := h.Projects.UpdateProfile(ctx, id, upd); err != nil {
			respond.Error(w, err, h.Log)
			return
		}
	}

	if req.Status != nil {
		if _, err := h.Projects.SetStatus(ctx, id, *req.Status); err != nil {
			respond.Error(w, err, h.Log)
			return
		}
	}

	p, err = h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, p)
}

// HandleDelete handles DELETE /api/projects/{id}. Only drafts can be
// removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		respond.Fail(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	if !h.canManage(ctx, r, p) {
		respond.Fail(w, http.StatusForbidden, "not a manager of this project")
		return
	}

	if err := h.Projects.Delete(ctx, id); err != nil {
		respond.Error(w, err, h.Log)
		return
	}
	respond.OK(w, map[string]string{"status": "deleted"})
}
