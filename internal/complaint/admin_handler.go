package complaint

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/transport"
	"github.com/frahmantamala/civic-complaints/pkg/logger"
)

// AdminHandler serves the city administration surface: the full complaint
// register, triage operations and the dashboard.
type AdminHandler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Stats   StatsAPI
}

func NewAdminHandler(svc ServiceAPI, stats StatsAPI) *AdminHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &AdminHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Stats:       stats,
	}
}

// ListComplaints serves the paginated city-wide register with status,
// department and priority filters.
func (h *AdminHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
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
		"message":    "Complaints retrieved successfully",
		"count":      result.Count,
		"total":      result.Total,
		"page":       result.Page,
		"pages":      result.Pages,
		"complaints": result.Complaints,
	})
}

// UpdatePriority reprioritizes one complaint.
func (h *AdminHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdatePriorityDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpdatePriority(r.Context(), actor, id, dto)
	if err != nil {
		h.handleAdminError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Priority updated successfully",
		"complaint": map[string]interface{}{
			"id":       c.ID,
			"priority": c.Priority,
			"title":    c.Title,
		},
	})
}

// AssignDepartment reroutes a complaint and restarts work on it.
func (h *AdminHandler) AssignDepartment(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto AssignDepartmentDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.AssignDepartment(r.Context(), actor, id, dto)
	if err != nil {
		h.handleAdminError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Complaint assigned successfully",
		"complaint": map[string]interface{}{
			"id":         c.ID,
			"department": c.Department,
			"status":     c.Status,
			"title":      c.Title,
		},
	})
}

// UpdateStatus sets any workflow status, with optional admin notes.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
		h.handleAdminError(w, err, id)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status updated successfully",
		"complaint": map[string]interface{}{
			"id":         c.ID,
			"status":     c.Status,
			"adminNotes": c.AdminNotes,
			"title":      c.Title,
		},
	})
}

// DashboardStats serves the city-wide overview figures.
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.DashboardStats(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Dashboard statistics retrieved successfully",
		"stats":   stats,
	})
}

func (h *AdminHandler) actorAndID(w http.ResponseWriter, r *http.Request) (auth.Actor, int64, bool) {
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

// handleAdminError rewords the shared not-found error for this surface,
// where there is no scope to conceal.
func (h *AdminHandler) handleAdminError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, internal.ErrComplaintNotFound) {
		err = internal.NewNotFoundError("Complaint not found.", internal.ErrCodeComplaintNotFound)
	}
	h.Logger.Error("admin complaint operation failed", "error", err, "complaint_id", id)
	h.HandleServiceError(w, err)
}
