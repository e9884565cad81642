package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/pkg/auth"
	"github.com/pixelvault/arttoys-backend/pkg/config"
	"github.com/pixelvault/arttoys-backend/pkg/db"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
	"github.com/pixelvault/arttoys-backend/pkg/security"
)

const minPasswordLength = 8

// sessionManager is the session surface the service needs. Satisfied by
// *session.Manager.
type sessionManager interface {
	Start(ctx context.Context, accessID string, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes account and credential operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	RegisterAdmin(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo       *Repository
	sessions   sessionManager
	jwt        config.JWTConfig
	password   config.PasswordConfig
	allowAdmin bool
	now        func() time.Time
}

// ServiceParams groups dependencies for the user service.
type ServiceParams struct {
	Repo     *Repository
	Sessions sessionManager
	JWT      config.JWTConfig
	Password config.PasswordConfig
	// AllowAdminRegister opens the admin registration endpoint. Only set in
	// dev environments.
	AllowAdminRegister bool
	Now                func() time.Time
}

// NewService builds a user service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		sessions:   params.Sessions,
		jwt:        params.JWT,
		password:   params.Password,
		allowAdmin: params.AllowAdminRegister,
		now:        now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	return s.register(ctx, input, enums.UserRoleMember)
}

// RegisterAdmin provisions an admin account. Closed outside dev so the
// public surface can never mint admins.
func (s *service) RegisterAdmin(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	if !s.allowAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	return s.register(ctx, input, enums.UserRoleAdmin)
}

func (s *service) register(ctx context.Context, input RegisterInput, role enums.UserRole) (*UserDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	jti := uuid.NewString()
	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if err := s.sessions.Start(ctx, jti, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}

	return &LoginResult{Token: token, User: *FromModel(user)}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
