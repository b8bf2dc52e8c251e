package department

import (
	"context"
	"time"

	departmentDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/department"
)

// Department is the public directory view of a municipal department,
// including its cached complaint counters.
type Department struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	AverageRating      float64   `json:"averageRating"`
	TotalComplaints    int64     `json:"totalComplaints"`
	ResolvedComplaints int64     `json:"resolvedComplaints"`
	PendingComplaints  int64     `json:"pendingComplaints"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Counters are the denormalized complaint figures cached on a department
// row.
type Counters struct {
	TotalComplaints    int64
	ResolvedComplaints int64
	PendingComplaints  int64
	AverageRating      float64
}

// CounterSource recomputes a department's counters from the system of
// record. Implemented by the complaint statistics service; declared here so
// this package never depends on the complaint package.
type CounterSource interface {
	CountersFor(ctx context.Context, dept string) (Counters, error)
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:                 d.ID,
		Name:               d.Name,
		Email:              d.Email,
		Phone:              d.Phone,
		Address:            d.Address,
		AverageRating:      d.AverageRating,
		TotalComplaints:    d.TotalComplaints,
		ResolvedComplaints: d.ResolvedComplaints,
		PendingComplaints:  d.PendingComplaints,
		IsActive:           d.IsActive,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func FromDataModelSlice(items []*departmentDatamodel.Department) []*Department {
	result := make([]*Department, len(items))
	for i, d := range items {
		result[i] = FromDataModel(d)
	}
	return result
}
