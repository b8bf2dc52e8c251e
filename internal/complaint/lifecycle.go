package complaint

import (
	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

// Action is a requested mutation of a complaint's workflow state. Every
// write path in the API is expressed as one of these and decided by
// Transition, so the rules cannot drift between the admin, department and
// citizen handlers.
type Action interface {
	isAction()
}

// SetPriority reprioritizes a complaint. Admin only; no status side effect.
type SetPriority struct {
	Priority Priority
}

// AssignDepartment moves a complaint to another department. Admin only.
// Reassignment always restarts work: status is forced to in-progress
// whatever the prior state, including resolved or closed.
type AssignDepartment struct {
	Department string
}

// SetStatus changes workflow status. Admins may set any status; department
// staff only in-progress or resolved, and only inside their own department.
type SetStatus struct {
	Status     Status
	AdminNotes string
}

// SubmitResolution records the department's closing evidence and resolves
// the complaint.
type SubmitResolution struct {
	ImagePath string
	Notes     string
}

// SubmitRating is the owning citizen's one-time feedback on a resolved
// complaint; accepting it closes the complaint.
type SubmitRating struct {
	Rating   int
	Feedback string
}

func (SetPriority) isAction()      {}
func (AssignDepartment) isAction() {}
func (SetStatus) isAction()        {}
func (SubmitResolution) isAction() {}
func (SubmitRating) isAction()     {}

// Effect is the mutation Transition hands back for the repository to apply.
// StampResolvedAt and GuardUnrated map to conditional updates at the storage
// layer so the set-once invariants hold even under concurrent writers.
type Effect struct {
	Status          *Status
	Priority        *Priority
	Department      *string
	AdminNotes      *string
	ResolutionImage *string
	ResolutionNotes *string
	Rating          *int
	Feedback        *string

	// StampResolvedAt sets resolved_at to now only where it is still null.
	StampResolvedAt bool
	// GuardUnrated restricts the whole update to rows that are still
	// unrated and currently resolved.
	GuardUnrated bool
}

// Transition is the single authority for complaint workflow changes. It
// checks the actor's authority over the complaint and the legality of the
// requested action, returning the effect to apply or a typed rejection.
// Scope violations surface as the same not-found error a missing record
// produces.
func Transition(c *Complaint, action Action, actor auth.Actor) (Effect, error) {
	switch a := action.(type) {
	case SetPriority:
		if err := requireAdmin(actor); err != nil {
			return Effect{}, err
		}
		if !a.Priority.Valid() {
			return Effect{}, internal.NewValidationError("Invalid priority value.", internal.ErrCodeInvalidPriority)
		}
		return Effect{Priority: &a.Priority}, nil

	case AssignDepartment:
		if err := requireAdmin(actor); err != nil {
			return Effect{}, err
		}
		if !department.IsValid(a.Department) {
			return Effect{}, internal.NewValidationError("Invalid department.", internal.ErrCodeInvalidDepartment)
		}
		status := StatusInProgress
		return Effect{Department: &a.Department, Status: &status}, nil

	case SetStatus:
		if !a.Status.Valid() {
			return Effect{}, internal.NewValidationError("Invalid status value.", internal.ErrCodeInvalidStatus)
		}
		switch actor.Role {
		case auth.RoleAdmin:
			eff := Effect{Status: &a.Status, StampResolvedAt: a.Status == StatusResolved}
			if a.AdminNotes != "" {
				eff.AdminNotes = &a.AdminNotes
			}
			return eff, nil
		case auth.RoleDepartment:
			if c.Department != actor.Department {
				return Effect{}, internal.ErrComplaintNotFound
			}
			if a.Status != StatusInProgress && a.Status != StatusResolved {
				return Effect{}, internal.NewValidationError(
					"Invalid status value. Department can only set to in-progress or resolved.",
					internal.ErrCodeInvalidStatus,
				)
			}
			return Effect{Status: &a.Status, StampResolvedAt: a.Status == StatusResolved}, nil
		case auth.RoleCitizen:
			return Effect{}, internal.ErrComplaintNotFound
		default:
			return Effect{}, internal.ErrComplaintNotFound
		}

	case SubmitResolution:
		switch actor.Role {
		case auth.RoleDepartment:
			if c.Department != actor.Department {
				return Effect{}, internal.ErrComplaintNotFound
			}
		case auth.RoleAdmin, auth.RoleCitizen:
			return Effect{}, internal.ErrComplaintNotFound
		default:
			return Effect{}, internal.ErrComplaintNotFound
		}
		if c.IsClosed() {
			return Effect{}, internal.NewNotFoundError("Complaint not found or already closed.", internal.ErrCodeComplaintNotFound)
		}
		status := StatusResolved
		return Effect{
			Status:          &status,
			ResolutionImage: &a.ImagePath,
			ResolutionNotes: &a.Notes,
			StampResolvedAt: true,
		}, nil

	case SubmitRating:
		switch actor.Role {
		case auth.RoleCitizen:
			if c.UserID != actor.UserID {
				return Effect{}, internal.ErrComplaintNotFound
			}
		case auth.RoleAdmin, auth.RoleDepartment:
			return Effect{}, internal.ErrComplaintNotFound
		default:
			return Effect{}, internal.ErrComplaintNotFound
		}
		if a.Rating < 1 || a.Rating > 5 {
			return Effect{}, internal.NewValidationError("Rating must be between 1 and 5.", internal.ErrCodeInvalidRating)
		}
		if c.Status != StatusResolved {
			return Effect{}, internal.ErrComplaintNotFound
		}
		if c.IsRated() {
			return Effect{}, internal.ErrAlreadyRated
		}
		status := StatusClosed
		return Effect{
			Status:       &status,
			Rating:       &a.Rating,
			Feedback:     &a.Feedback,
			GuardUnrated: true,
		}, nil
	}

	return Effect{}, internal.NewInternalError("unknown complaint action", nil)
}

func requireAdmin(actor auth.Actor) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleCitizen, auth.RoleDepartment:
		return internal.ErrComplaintNotFound
	default:
		return internal.ErrComplaintNotFound
	}
}
