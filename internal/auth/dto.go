package auth

import (
	"strings"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

type SignupDTO struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AadharNumber string `json:"aadharNumber"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

func (dto SignupDTO) Validate() *internal.AppError {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationFieldError("name", "Name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Email) == "" {
		return internal.NewValidationFieldError("email", "Email is required", internal.ErrCodeValidationFailed)
	}
	if !strings.Contains(dto.Email, "@") {
		return internal.NewValidationFieldError("email", "Please enter a valid email", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 6 {
		return internal.NewValidationFieldError("password", "Password must be at least 6 characters", internal.ErrCodeValidationFailed)
	}
	if len(dto.AadharNumber) != 12 {
		return internal.NewValidationFieldError("aadharNumber", "Aadhar number must be 12 digits", internal.ErrCodeValidationFailed)
	}
	for _, r := range dto.AadharNumber {
		if r < '0' || r > '9' {
			return internal.NewValidationFieldError("aadharNumber", "Aadhar number must be 12 digits", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() *internal.AppError {
	if dto.Email == "" || dto.Password == "" {
		return internal.NewValidationError("Email and password are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AdminLoginDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	SecretKey string `json:"secretKey"`
}

func (dto AdminLoginDTO) Validate() *internal.AppError {
	if dto.Email == "" || dto.Password == "" || dto.SecretKey == "" {
		return internal.NewValidationError("Email, password and secret key are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type DepartmentLoginDTO struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

func (dto DepartmentLoginDTO) Validate() *internal.AppError {
	if dto.Email == "" || dto.Password == "" {
		return internal.NewValidationError("Email and password are required", internal.ErrCodeValidationFailed)
	}
	if !department.IsValid(dto.Department) {
		return internal.NewValidationError("Invalid department.", internal.ErrCodeInvalidDepartment)
	}
	return nil
}

// UserView is the account shape returned from auth endpoints. The password
// hash never leaves the service layer.
type UserView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type AuthResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}
