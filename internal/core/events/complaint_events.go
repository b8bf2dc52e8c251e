package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeComplaintCreated  = "complaint.created"
	EventTypeComplaintAssigned = "complaint.assigned"
	EventTypeComplaintResolved = "complaint.resolved"
	EventTypeComplaintRated    = "complaint.rated"
)

// ComplaintEvent covers every lifecycle event: the department counters
// subscriber only needs to know which departments' figures went stale.
type ComplaintEvent struct {
	BaseEvent
	ComplaintID int64  `json:"complaint_id"`
	Department  string `json:"department"`
	// PreviousDepartment is set on reassignment so the counters of the
	// department the complaint left can be refreshed too.
	PreviousDepartment string `json:"previous_department,omitempty"`
}

func newComplaintEvent(eventType string, complaintID int64, dept string) *ComplaintEvent {
	return &ComplaintEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
		},
		ComplaintID: complaintID,
		Department:  dept,
	}
}

func NewComplaintCreatedEvent(complaintID int64, dept string) *ComplaintEvent {
	return newComplaintEvent(EventTypeComplaintCreated, complaintID, dept)
}

func NewComplaintAssignedEvent(complaintID int64, dept, previousDept string) *ComplaintEvent {
	e := newComplaintEvent(EventTypeComplaintAssigned, complaintID, dept)
	e.PreviousDepartment = previousDept
	return e
}

func NewComplaintResolvedEvent(complaintID int64, dept string) *ComplaintEvent {
	return newComplaintEvent(EventTypeComplaintResolved, complaintID, dept)
}

func NewComplaintRatedEvent(complaintID int64, dept string) *ComplaintEvent {
	return newComplaintEvent(EventTypeComplaintRated, complaintID, dept)
}
