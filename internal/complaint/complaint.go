package complaint

import (
	"time"

	complaintDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/complaint"
)

// Status is the complaint workflow state. The only transitions are
// pending → in-progress → resolved → closed, except that an admin
// reassignment forces in-progress from any state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Complaint struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"userId"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	ImagePath           string     `json:"image"`
	VoiceNotePath       *string    `json:"voiceNote,omitempty"`
	Location            string     `json:"location"`
	Department          string     `json:"department"`
	Status              Status     `json:"status"`
	Priority            Priority   `json:"priority"`
	AdminNotes          string     `json:"adminNotes,omitempty"`
	ResolutionImagePath *string    `json:"resolutionImage,omitempty"`
	ResolutionNotes     string     `json:"resolutionNotes,omitempty"`
	Rating              *int       `json:"rating,omitempty"`
	Feedback            string     `json:"feedback,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`
}

func (c *Complaint) IsRated() bool {
	return c.Rating != nil
}

func (c *Complaint) IsClosed() bool {
	return c.Status == StatusClosed
}

func ToDataModel(c *Complaint) *complaintDatamodel.Complaint {
	return &complaintDatamodel.Complaint{
		ID:                  c.ID,
		UserID:              c.UserID,
		Title:               c.Title,
		Description:         c.Description,
		ImagePath:           c.ImagePath,
		VoiceNotePath:       c.VoiceNotePath,
		Location:            c.Location,
		Department:          c.Department,
		Status:              string(c.Status),
		Priority:            string(c.Priority),
		AdminNotes:          c.AdminNotes,
		ResolutionImagePath: c.ResolutionImagePath,
		ResolutionNotes:     c.ResolutionNotes,
		Rating:              c.Rating,
		Feedback:            c.Feedback,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		ResolvedAt:          c.ResolvedAt,
	}
}

func FromDataModel(c *complaintDatamodel.Complaint) *Complaint {
	return &Complaint{
		ID:                  c.ID,
		UserID:              c.UserID,
		Title:               c.Title,
		Description:         c.Description,
		ImagePath:           c.ImagePath,
		VoiceNotePath:       c.VoiceNotePath,
		Location:            c.Location,
		Department:          c.Department,
		Status:              Status(c.Status),
		Priority:            Priority(c.Priority),
		AdminNotes:          c.AdminNotes,
		ResolutionImagePath: c.ResolutionImagePath,
		ResolutionNotes:     c.ResolutionNotes,
		Rating:              c.Rating,
		Feedback:            c.Feedback,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		ResolvedAt:          c.ResolvedAt,
	}
}

func FromDataModelSlice(items []*complaintDatamodel.Complaint) []*Complaint {
	result := make([]*Complaint, len(items))
	for i, c := range items {
		result[i] = FromDataModel(c)
	}
	return result
}
