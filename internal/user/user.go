package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
)

// User is the account shape served to clients. Password hashes stay in the
// persistence layer.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	AadharNumber string    `json:"aadharNumber,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
		Address:   u.Address,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Department != nil {
		out.Department = *u.Department
	}
	if u.AadharNumber != nil {
		out.AadharNumber = *u.AadharNumber
	}
	return out
}

func FromDataModelSlice(items []*userDatamodel.User) []*User {
	result := make([]*User, len(items))
	for i, u := range items {
		result[i] = FromDataModel(u)
	}
	return result
}
