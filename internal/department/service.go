package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/civic-complaints/internal"
	departmentDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/department"
)

type Repository interface {
	List(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error)
	UpdateCounters(ctx context.Context, name string, counters Counters) error
}

// Service serves the department directory and keeps the cached counters in
// step with the complaints table.
type Service struct {
	repo     Repository
	counters CounterSource
	logger   *slog.Logger
}

func NewService(repo Repository, counters CounterSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, counters: counters, logger: logger}
}

// List returns the full directory in catalog order.
func (s *Service) List(ctx context.Context) ([]*Department, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list departments failed", "error", err)
		return nil, internal.NewInternalError("Server error while fetching departments", err)
	}
	return FromDataModelSlice(items), nil
}

// Get returns one department by its catalog name.
func (s *Service) Get(ctx context.Context, name string) (*Department, error) {
	if !IsValid(name) {
		return nil, internal.NewNotFoundError("Department not found.", internal.ErrCodeInvalidDepartment)
	}

	d, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, internal.NewNotFoundError("Department not found.", internal.ErrCodeInvalidDepartment)
	}
	return FromDataModel(d), nil
}

// RefreshCounters recomputes and stores one department's cached counters.
// Called from the complaint event subscribers; failures are logged by the
// bus, the counters converge on the next event.
func (s *Service) RefreshCounters(ctx context.Context, name string) error {
	if !IsValid(name) {
		return nil
	}

	counters, err := s.counters.CountersFor(ctx, name)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateCounters(ctx, name, counters); err != nil {
		return err
	}

	s.logger.Debug("department counters refreshed",
		"department", name,
		"total", counters.TotalComplaints,
		"pending", counters.PendingComplaints)
	return nil
}
