package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
	"github.com/frahmantamala/civic-complaints/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) user.Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll(ctx context.Context) ([]*userDatamodel.User, error) {
	var items []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
