package postgres

import (
	"errors"

	"github.com/frahmantamala/civic-complaints/internal/auth"
	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmailAndRole(email string, role string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.Where("email = ? AND role = ?", email, role).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetDepartmentStaff(email, dept string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("email = ? AND role = ? AND department = ?", email, "department", dept).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) ExistsByEmailOrAadhar(email, aadhar string) (bool, error) {
	var u userDatamodel.User
	err := r.db.Where("email = ? OR aadhar_number = ?", email, aadhar).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}
