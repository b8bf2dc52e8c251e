package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/media"
	"github.com/frahmantamala/civic-complaints/internal/transport"
	"github.com/frahmantamala/civic-complaints/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor auth.Actor, dto CreateComplaintDTO, image, voiceNote *multipart.FileHeader) (*Complaint, error)
	Get(ctx context.Context, actor auth.Actor, id int64) (*Complaint, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error)
	UpdatePriority(ctx context.Context, actor auth.Actor, id int64, dto UpdatePriorityDTO) (*Complaint, error)
	AssignDepartment(ctx context.Context, actor auth.Actor, id int64, dto AssignDepartmentDTO) (*Complaint, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id int64, dto UpdateStatusDTO) (*Complaint, error)
	SubmitResolution(ctx context.Context, actor auth.Actor, id int64, notes string, image *multipart.FileHeader) (*Complaint, error)
	SubmitRating(ctx context.Context, actor auth.Actor, id int64, dto RateComplaintDTO) (*Complaint, error)
}

type StatsAPI interface {
	MyStats(ctx context.Context, actor auth.Actor) (*MyStats, error)
	DepartmentStats(ctx context.Context, actor auth.Actor) (*DepartmentStats, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// Handler serves the citizen complaint surface.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Stats   StatsAPI
}

func NewHandler(svc ServiceAPI, stats StatsAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Stats:       stats,
	}
}

// Create accepts the multipart complaint submission: text fields plus a
// mandatory image and optional voiceNote file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(media.DefaultMaxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto := CreateComplaintDTO{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Department:  r.FormValue("department"),
	}

	c, err := h.Service.Create(r.Context(), actor, dto, formFile(r, "image"), formFile(r, "voiceNote"))
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Complaint submitted successfully",
		"complaint": map[string]interface{}{
			"id":         c.ID,
			"title":      c.Title,
			"status":     c.Status,
			"priority":   c.Priority,
			"department": c.Department,
			"createdAt":  c.CreatedAt,
		},
	})
}

// MyComplaints lists the acting citizen's complaints, newest first.
func (h *Handler) MyComplaints(w http.ResponseWriter, r *http.Request) {
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
		"complaints": result.Complaints,
	})
}

// Get serves one of the acting citizen's complaints.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ComplaintIDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Complaint retrieved successfully",
		"complaint": c,
	})
}

// Rate records the citizen's one-time rating of a resolved complaint.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := ComplaintIDParam(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto RateComplaintDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.SubmitRating(r.Context(), actor, id, dto)
	if err != nil {
		if errors.Is(err, internal.ErrComplaintNotFound) {
			err = internal.NewNotFoundError("Complaint not found, not resolved, or access denied.", internal.ErrCodeComplaintNotFound)
		}
		h.Logger.Error("Rate: service error", "error", err, "user_id", actor.UserID, "complaint_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Rating submitted successfully",
		"complaint": map[string]interface{}{
			"id":       c.ID,
			"rating":   c.Rating,
			"feedback": c.Feedback,
			"status":   c.Status,
		},
	})
}

// MyStats serves the citizen's dashboard tallies.
func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Stats.MyStats(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Statistics retrieved successfully",
		"stats":   stats,
	})
}

// ComplaintIDParam parses the {id} route parameter. A non-numeric value is
// a client error, not a missing record.
func ComplaintIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("Invalid complaint ID.", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

func listFilterFromQuery(r *http.Request) ListFilter {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	return ListFilter{
		Status:     query.Get("status"),
		Department: query.Get("department"),
		Priority:   query.Get("priority"),
		Page:       page,
		Limit:      limit,
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
