package auth

import (
	"crypto/subtle"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/civic-complaints/internal"
	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByEmailAndRole(email string, role string) (*userDatamodel.User, error)
	GetDepartmentStaff(email, dept string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	ExistsByEmailOrAadhar(email, aadhar string) (bool, error)
	Create(u *userDatamodel.User) error
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	adminSecretKey string
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, adminSecretKey string, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		adminSecretKey: adminSecretKey,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Signup registers a citizen account. Email and Aadhar number must both be
// unused; the conflict is reported without distinguishing which one matched.
func (s *Service) Signup(dto SignupDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmailOrAadhar(dto.Email, dto.AadharNumber)
	if err != nil {
		s.logger.Error("signup: uniqueness check failed", "error", err)
		return nil, internal.NewInternalError("Server error during signup", err)
	}
	if exists {
		return nil, internal.ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Server error during signup", err)
	}

	aadhar := dto.AadharNumber
	u := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         string(RoleCitizen),
		Phone:        dto.Phone,
		Address:      dto.Address,
		AadharNumber: &aadhar,
		IsActive:     true,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("signup: create user failed", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Server error during signup", err)
	}

	s.logger.Info("citizen account created", "user_id", u.ID, "email", u.Email)

	return s.issueToken(u, "User created successfully")
}

// Login authenticates citizens and department staff by email and password.
func (s *Service) Login(dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, internal.ErrAccountInactive
	}

	return s.issueToken(u, "Login successful")
}

// AdminLogin requires the shared admin secret on top of the admin's own
// credentials.
func (s *Service) AdminLogin(dto AdminLoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(dto.SecretKey), []byte(s.adminSecretKey)) != 1 {
		s.logger.Warn("admin login rejected: bad secret key", "email", dto.Email)
		return nil, internal.NewAuthenticationError("Invalid admin secret key.", internal.ErrCodeInvalidCredentials)
	}

	u, err := s.repo.GetByEmailAndRole(dto.Email, string(RoleAdmin))
	if err != nil {
		return nil, internal.NewAuthenticationError("Admin not found.", internal.ErrCodeInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, internal.ErrAccountInactive
	}

	s.logger.Info("admin login", "user_id", u.ID, "email", u.Email)

	return s.issueToken(u, "Admin login successful")
}

// DepartmentLogin authenticates staff scoped to a department selector; the
// account's stored department must match the one chosen at login.
func (s *Service) DepartmentLogin(dto DepartmentLoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetDepartmentStaff(dto.Email, dto.Department)
	if err != nil {
		return nil, internal.NewAuthenticationError("Department staff not found.", internal.ErrCodeInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, internal.ErrAccountInactive
	}

	s.logger.Info("department login", "user_id", u.ID, "department", dto.Department)

	return s.issueToken(u, "Department login successful")
}

// ValidateAccessToken validates a bearer token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ActorForToken resolves token claims against the user store. The store is
// authoritative for role, department and active flag, so a stale token
// cannot outlive a deactivation or reassignment.
func (s *Service) ActorForToken(claims *Claims) (Actor, error) {
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return Actor{}, internal.ErrInvalidToken
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return Actor{}, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return Actor{}, internal.ErrAccountInactive
	}

	role, ok := ParseRole(u.Role)
	if !ok {
		s.logger.Error("user has unknown role", "user_id", u.ID, "role", u.Role)
		return Actor{}, internal.ErrInvalidToken
	}

	actor := Actor{UserID: u.ID, Role: role}
	if role == RoleDepartment && u.Department != nil {
		actor.Department = *u.Department
	}
	return actor, nil
}

func (s *Service) issueToken(u *userDatamodel.User, message string) (*AuthResponse, error) {
	role, ok := ParseRole(u.Role)
	if !ok {
		return nil, internal.NewInternalError("Server error during login", nil)
	}

	dept := ""
	if u.Department != nil {
		dept = *u.Department
	}

	token, err := s.tokenGenerator.GenerateToken(u.ID, role, dept)
	if err != nil {
		s.logger.Error("token generation failed", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("Server error during login", err)
	}

	return &AuthResponse{
		Message: message,
		Token:   token,
		User: UserView{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			Department: dept,
			Phone:      u.Phone,
		},
	}, nil
}
