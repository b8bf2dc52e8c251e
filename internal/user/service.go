package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/civic-complaints/internal"
	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
)

type Repository interface {
	ListAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns every registered account, newest first. Admin only; the
// route gating enforces that.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		return nil, internal.NewInternalError("Server error while retrieving users", err)
	}
	return FromDataModelSlice(items), nil
}

// Profile returns the acting user's own account.
func (s *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}
