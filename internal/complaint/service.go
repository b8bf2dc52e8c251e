package complaint

import (
	"context"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/core/events"
	"github.com/frahmantamala/civic-complaints/internal/media"
)

// Scope restricts which complaints an actor can see and touch. A zero
// Scope means unrestricted (admin); otherwise exactly one of UserID or
// Department is set.
type Scope struct {
	UserID     int64
	Department string
}

func (s Scope) Unrestricted() bool {
	return s.UserID == 0 && s.Department == ""
}

// ScopeFor derives the visibility scope from the authenticated actor.
func ScopeFor(actor auth.Actor) Scope {
	switch actor.Role {
	case auth.RoleAdmin:
		return Scope{}
	case auth.RoleDepartment:
		return Scope{Department: actor.Department}
	case auth.RoleCitizen:
		return Scope{UserID: actor.UserID}
	default:
		// Unknown roles see nothing.
		return Scope{UserID: -1}
	}
}

type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	// GetScoped fetches a complaint visible inside scope, reporting the
	// same not-found error for missing and out-of-scope records.
	GetScoped(ctx context.Context, id int64, scope Scope) (*Complaint, error)
	List(ctx context.Context, scope Scope, filter ListFilter) ([]*Complaint, int64, error)
	// ApplyUpdate applies an effect to a scoped complaint and returns the
	// updated row. The conditional flags on the effect are enforced in the
	// same statement so set-once fields survive concurrent writers.
	ApplyUpdate(ctx context.Context, id int64, scope Scope, eff Effect) (*Complaint, error)
}

// FileStore is the slice of the media store the service needs.
type FileStore interface {
	SaveImage(fh *multipart.FileHeader) (string, error)
	SaveVoiceNote(fh *multipart.FileHeader) (string, error)
	SaveResolutionImage(fh *multipart.FileHeader) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	files    FileStore
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, files FileStore, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		eventBus: eventBus,
		logger:   logger,
	}
}

var _ FileStore = (*media.Store)(nil)

// Create registers a new complaint for the acting citizen. The image is
// mandatory, the voice note optional; both are validated and persisted
// before the row is written.
func (s *Service) Create(ctx context.Context, actor auth.Actor, dto CreateComplaintDTO, image, voiceNote *multipart.FileHeader) (*Complaint, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, internal.ErrImageRequired
	}

	imagePath, err := s.files.SaveImage(image)
	if err != nil {
		return nil, err
	}

	var voicePath *string
	if voiceNote != nil {
		p, err := s.files.SaveVoiceNote(voiceNote)
		if err != nil {
			return nil, err
		}
		voicePath = &p
	}

	c := &Complaint{
		UserID:        actor.UserID,
		Title:         strings.TrimSpace(dto.Title),
		Description:   strings.TrimSpace(dto.Description),
		ImagePath:     imagePath,
		VoiceNotePath: voicePath,
		Location:      strings.TrimSpace(dto.Location),
		Department:    dto.Department,
		Status:        StatusPending,
		Priority:      PriorityMedium,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("create complaint failed", "error", err, "user_id", actor.UserID)
		return nil, internal.NewInternalError("Server error while creating complaint", err)
	}

	s.logger.Info("complaint created",
		"complaint_id", c.ID,
		"user_id", actor.UserID,
		"department", c.Department)

	s.publish(ctx, events.NewComplaintCreatedEvent(c.ID, c.Department))

	return c, nil
}

// Get fetches one complaint inside the actor's scope.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id int64) (*Complaint, error) {
	return s.repo.GetScoped(ctx, id, ScopeFor(actor))
}

// List returns the actor's visible complaints, filtered and paged.
// Citizens and admins see newest first; department queues order by
// priority, then age.
func (s *Service) List(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	scope := ScopeFor(actor)
	if !scope.Unrestricted() {
		// Scoped listings ignore any department filter smuggled in.
		filter.Department = ""
	}

	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("list complaints failed", "error", err)
		return nil, internal.NewInternalError("Server error while fetching complaints", err)
	}

	pages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		pages++
	}

	return &ListResult{
		Count:      len(items),
		Total:      total,
		Page:       filter.Page,
		Pages:      pages,
		Complaints: items,
	}, nil
}

// UpdatePriority sets a complaint's priority. Admin only.
func (s *Service) UpdatePriority(ctx context.Context, actor auth.Actor, id int64, dto UpdatePriorityDTO) (*Complaint, error) {
	return s.apply(ctx, actor, id, SetPriority{Priority: Priority(dto.Priority)})
}

// AssignDepartment reroutes a complaint to another department and restarts
// work on it. Admin only.
func (s *Service) AssignDepartment(ctx context.Context, actor auth.Actor, id int64, dto AssignDepartmentDTO) (*Complaint, error) {
	before, err := s.repo.GetScoped(ctx, id, ScopeFor(actor))
	if err != nil {
		return nil, err
	}

	updated, err := s.apply(ctx, actor, id, AssignDepartment{Department: dto.Department})
	if err != nil {
		return nil, err
	}

	if before.Department != updated.Department {
		s.publish(ctx, events.NewComplaintAssignedEvent(updated.ID, updated.Department, before.Department))
	}
	return updated, nil
}

// UpdateStatus changes workflow status within the actor's authority.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, dto UpdateStatusDTO) (*Complaint, error) {
	updated, err := s.apply(ctx, actor, id, SetStatus{Status: Status(dto.Status), AdminNotes: dto.AdminNotes})
	if err != nil {
		return nil, err
	}
	// Only resolutions publish an event. The department counters are a
	// cache, so a pending/in-progress/closed change converges on the next
	// lifecycle event for that department.
	if updated.Status == StatusResolved {
		s.publish(ctx, events.NewComplaintResolvedEvent(updated.ID, updated.Department))
	}
	return updated, nil
}

// SubmitResolution stores the department's resolution photo and notes and
// marks the complaint resolved.
func (s *Service) SubmitResolution(ctx context.Context, actor auth.Actor, id int64, notes string, image *multipart.FileHeader) (*Complaint, error) {
	if image == nil {
		return nil, internal.NewMediaError("Resolution image is required.", internal.ErrCodeImageRequired)
	}

	imagePath, err := s.files.SaveResolutionImage(image)
	if err != nil {
		return nil, err
	}

	updated, err := s.apply(ctx, actor, id, SubmitResolution{ImagePath: imagePath, Notes: notes})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewComplaintResolvedEvent(updated.ID, updated.Department))

	return updated, nil
}

// SubmitRating records the owning citizen's one-time rating of a resolved
// complaint and closes it.
func (s *Service) SubmitRating(ctx context.Context, actor auth.Actor, id int64, dto RateComplaintDTO) (*Complaint, error) {
	updated, err := s.apply(ctx, actor, id, SubmitRating{Rating: dto.Rating, Feedback: dto.Feedback})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewComplaintRatedEvent(updated.ID, updated.Department))

	return updated, nil
}

// apply loads the scoped complaint, decides the action through Transition
// and hands the resulting effect to the repository.
func (s *Service) apply(ctx context.Context, actor auth.Actor, id int64, action Action) (*Complaint, error) {
	scope := ScopeFor(actor)

	current, err := s.repo.GetScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	eff, err := Transition(current, action, actor)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.ApplyUpdate(ctx, id, scope, eff)
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint updated",
		"complaint_id", id,
		"user_id", actor.UserID,
		"role", actor.Role,
		"status", updated.Status)

	return updated, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "event_type", event.EventType(), "error", err)
	}
}
