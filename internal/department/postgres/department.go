package postgres

import (
	"context"

	departmentDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/department"
	"github.com/frahmantamala/civic-complaints/internal/department"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) department.Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	var items []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) UpdateCounters(ctx context.Context, name string, counters department.Counters) error {
	return r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"total_complaints":    counters.TotalComplaints,
			"resolved_complaints": counters.ResolvedComplaints,
			"pending_complaints":  counters.PendingComplaints,
			"average_rating":      counters.AverageRating,
		}).Error
}
