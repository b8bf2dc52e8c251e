package complaint

import (
	"strings"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// CreateComplaintDTO carries the text fields of the multipart create
// request; the files travel separately.
type CreateComplaintDTO struct {
	Title       string
	Description string
	Location    string
	Department  string
}

func (dto CreateComplaintDTO) Validate() *internal.AppError {
	var fieldErrors []internal.ValidationError

	if strings.TrimSpace(dto.Title) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "title", Message: "Title is required", Code: string(internal.ErrCodeValidationFailed),
		})
	} else if len(dto.Title) > MaxTitleLength {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "title", Message: "Title cannot exceed 200 characters", Code: string(internal.ErrCodeInvalidTitle),
		})
	}

	if strings.TrimSpace(dto.Description) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "description", Message: "Description is required", Code: string(internal.ErrCodeValidationFailed),
		})
	} else if len(dto.Description) > MaxDescriptionLength {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "description", Message: "Description cannot exceed 1000 characters", Code: string(internal.ErrCodeValidationFailed),
		})
	}

	if strings.TrimSpace(dto.Location) == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "location", Message: "Location is required", Code: string(internal.ErrCodeValidationFailed),
		})
	}

	if dto.Department == "" {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "department", Message: "Department is required", Code: string(internal.ErrCodeValidationFailed),
		})
	} else if !department.IsValid(dto.Department) {
		fieldErrors = append(fieldErrors, internal.ValidationError{
			Field: "department", Message: "Invalid department.", Code: string(internal.ErrCodeInvalidDepartment),
		})
	}

	if len(fieldErrors) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: fieldErrors})
	}

	return nil
}

type UpdatePriorityDTO struct {
	Priority string `json:"priority"`
}

type AssignDepartmentDTO struct {
	Department string `json:"department"`
}

type UpdateStatusDTO struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes,omitempty"`
}

type RateComplaintDTO struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// ListFilter narrows and pages complaint listings. Zero values mean
// "no filter"; invalid filter values are rejected before they reach the
// repository.
type ListFilter struct {
	Status     string
	Department string
	Priority   string
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() *internal.AppError {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Status != "" && !Status(f.Status).Valid() {
		return internal.NewValidationError("Invalid status value.", internal.ErrCodeInvalidStatus)
	}
	if f.Priority != "" && !Priority(f.Priority).Valid() {
		return internal.NewValidationError("Invalid priority value.", internal.ErrCodeInvalidPriority)
	}
	if f.Department != "" && !department.IsValid(f.Department) {
		return internal.NewValidationError("Invalid department.", internal.ErrCodeInvalidDepartment)
	}
	return nil
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ListResult mirrors the paginated envelope the dashboards consume.
type ListResult struct {
	Count      int          `json:"count"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Pages      int64        `json:"pages"`
	Complaints []*Complaint `json:"complaints"`
}
