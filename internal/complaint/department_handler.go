package complaint

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/media"
	"github.com/frahmantamala/civic-complaints/internal/transport"
	"github.com/frahmantamala/civic-complaints/pkg/logger"
)

// DepartmentHandler serves the department staff surface: the work queue,
// status updates and resolution submission, all scoped to the staff
// member's own department.
type DepartmentHandler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Stats   StatsAPI
}

func NewDepartmentHandler(svc ServiceAPI, stats StatsAPI) *DepartmentHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &DepartmentHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Stats:       stats,
	}
}

// ListComplaints serves the department's queue, most urgent first.
func (h *DepartmentHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.Service.List(r.Context(), actor, listFilterFromQuery(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Department complaints retrieved successfully",
		"count":      result.Count,
		"total":      result.Total,
		"page":       result.Page,
		"pages":      result.Pages,
		"department": actor.Department,
		"complaints": result.Complaints,
	})
}

// GetComplaint serves one complaint from the staff member's department.
func (h *DepartmentHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.handleDepartmentError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Complaint details retrieved successfully",
		"complaint": c,
	})
}

// UpdateStatus moves a complaint between in-progress and resolved.
func (h *DepartmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpdateStatus(r.Context(), actor, id, dto)
	if err != nil {
		h.handleDepartmentError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status updated successfully",
		"complaint": map[string]interface{}{
			"id":         c.ID,
			"status":     c.Status,
			"title":      c.Title,
			"resolvedAt": c.ResolvedAt,
		},
	})
}

// SubmitResolution accepts the multipart resolution: a mandatory
// resolutionImage plus optional notes.
func (h *DepartmentHandler) SubmitResolution(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(media.DefaultMaxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image := formFile(r, "resolutionImage")
	if image == nil {
		h.HandleServiceError(w, internal.NewMediaError("Resolution image is required.", internal.ErrCodeImageRequired))
		return
	}

	c, err := h.Service.SubmitResolution(r.Context(), actor, id, r.FormValue("notes"), image)
	if err != nil {
		h.handleDepartmentError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Resolution submitted successfully",
		"complaint": map[string]interface{}{
			"id":              c.ID,
			"status":          c.Status,
			"resolutionImage": c.ResolutionImagePath,
			"resolutionNotes": c.ResolutionNotes,
			"resolvedAt":      c.ResolvedAt,
			"title":           c.Title,
		},
	})
}

// DepartmentStats serves the department dashboard figures.
func (h *DepartmentHandler) DepartmentStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Stats.DepartmentStats(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Department statistics retrieved successfully",
		"stats":   stats,
	})
}

func (h *DepartmentHandler) actorAndID(w http.ResponseWriter, r *http.Request) (auth.Actor, int64, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Actor{}, 0, false
	}

	id, err := ComplaintIDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return auth.Actor{}, 0, false
	}

	return actor, id, true
}

// handleDepartmentError rewords the shared not-found error for this
// surface: the record either does not exist or belongs elsewhere, and the
// two cases are indistinguishable to staff.
func (h *DepartmentHandler) handleDepartmentError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, internal.ErrComplaintNotFound) {
		err = internal.NewNotFoundError("Complaint not found in your department.", internal.ErrCodeComplaintNotFound)
	}
	h.Logger.Error("department complaint operation failed", "error", err, "complaint_id", id)
	h.HandleServiceError(w, err)
}
