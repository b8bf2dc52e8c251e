package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	complaintDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/complaint"
	"gorm.io/gorm"
)

// priorityRank orders the department work queue highest priority first. The
// CASE expression keeps the ordering in the database so pagination stays
// correct.
const priorityRank = "CASE priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ complaint.Repository      = (*Repository)(nil)
	_ complaint.StatsRepository = (*Repository)(nil)
)

func (r *Repository) Create(ctx context.Context, c *complaint.Complaint) error {
	dm := complaint.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	*c = *complaint.FromDataModel(dm)
	return nil
}

func (r *Repository) GetScoped(ctx context.Context, id int64, scope complaint.Scope) (*complaint.Complaint, error) {
	var dm complaintDatamodel.Complaint
	err := scoped(r.db.WithContext(ctx), scope).First(&dm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrComplaintNotFound
		}
		return nil, err
	}
	return complaint.FromDataModel(&dm), nil
}

func (r *Repository) List(ctx context.Context, scope complaint.Scope, filter complaint.ListFilter) ([]*complaint.Complaint, int64, error) {
	q := scoped(r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}), scope)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Department queues work urgent-first; everyone else reads newest-first.
	if scope.Department != "" {
		q = q.Order(priorityRank + " DESC").Order("created_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}

	var items []*complaintDatamodel.Complaint
	if err := q.Limit(filter.Limit).Offset(filter.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return complaint.FromDataModelSlice(items), total, nil
}

// ApplyUpdate writes an effect inside one transaction. The guard flags
// become WHERE conditions on the update itself, so a concurrent writer
// cannot overwrite a resolution timestamp or an existing rating; a guarded
// update that matches no row reports the conflict.
func (r *Repository) ApplyUpdate(ctx context.Context, id int64, scope complaint.Scope, eff complaint.Effect) (*complaint.Complaint, error) {
	updates := effectColumns(eff)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			q := scoped(tx.Model(&complaintDatamodel.Complaint{}).Where("id = ?", id), scope)
			if eff.GuardUnrated {
				q = q.Where("rating IS NULL AND status = ?", string(complaint.StatusResolved))
			}

			res := q.Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if eff.GuardUnrated {
					return internal.ErrAlreadyRated
				}
				return internal.ErrComplaintNotFound
			}
		}

		if eff.StampResolvedAt {
			err := tx.Model(&complaintDatamodel.Complaint{}).
				Where("id = ? AND resolved_at IS NULL", id).
				Update("resolved_at", time.Now()).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetScoped(ctx, id, scope)
}

func (r *Repository) StatusCounts(ctx context.Context, scope complaint.Scope) (map[complaint.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := scoped(r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}), scope).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[complaint.Status]int64, len(rows))
	for _, row := range rows {
		counts[complaint.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *Repository) PriorityCounts(ctx context.Context) (map[complaint.Priority]int64, error) {
	var rows []struct {
		Priority string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}).
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[complaint.Priority]int64, len(rows))
	for _, row := range rows {
		counts[complaint.Priority(row.Priority)] = row.Count
	}
	return counts, nil
}

func (r *Repository) DepartmentCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Department string
		Count      int64
	}
	err := r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}).
		Select("department, COUNT(*) AS count").
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Department] = row.Count
	}
	return counts, nil
}

func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *Repository) ResolutionSamples(ctx context.Context, scope complaint.Scope) ([]complaint.ResolutionSample, error) {
	var rows []struct {
		Status     string
		CreatedAt  time.Time
		ResolvedAt time.Time
	}
	err := scoped(r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}), scope).
		Select("status, created_at, resolved_at").
		Where("resolved_at IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	samples := make([]complaint.ResolutionSample, len(rows))
	for i, row := range rows {
		samples[i] = complaint.ResolutionSample{
			Status:     complaint.Status(row.Status),
			CreatedAt:  row.CreatedAt,
			ResolvedAt: row.ResolvedAt,
		}
	}
	return samples, nil
}

func (r *Repository) RatingSummary(ctx context.Context, scope complaint.Scope) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := scoped(r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}), scope).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(rating) AS count").
		Where("rating IS NOT NULL").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}

func scoped(q *gorm.DB, scope complaint.Scope) *gorm.DB {
	if scope.UserID != 0 {
		q = q.Where("user_id = ?", scope.UserID)
	}
	if scope.Department != "" {
		q = q.Where("department = ?", scope.Department)
	}
	return q
}

// effectColumns maps the effect's set pointers onto update columns.
func effectColumns(eff complaint.Effect) map[string]interface{} {
	updates := make(map[string]interface{})
	if eff.Status != nil {
		updates["status"] = string(*eff.Status)
	}
	if eff.Priority != nil {
		updates["priority"] = string(*eff.Priority)
	}
	if eff.Department != nil {
		updates["department"] = *eff.Department
	}
	if eff.AdminNotes != nil {
		updates["admin_notes"] = *eff.AdminNotes
	}
	if eff.ResolutionImage != nil {
		updates["resolution_image_path"] = *eff.ResolutionImage
	}
	if eff.ResolutionNotes != nil {
		updates["resolution_notes"] = *eff.ResolutionNotes
	}
	if eff.Rating != nil {
		updates["rating"] = *eff.Rating
	}
	if eff.Feedback != nil {
		updates["feedback"] = *eff.Feedback
	}
	return updates
}
