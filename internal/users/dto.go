package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
)

// UserDTO is the transport shape for an account. The password hash never
// leaves the service layer.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput carries a credential check request.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult bundles the minted access token with the account it belongs to.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// FromModel maps the persistence row onto the transport shape.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
