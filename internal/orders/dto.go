package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelvault/arttoys-backend/internal/catalog"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
)

// Actor identifies the authenticated caller for scoped order operations.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor sees the unscoped ledger.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// OrderUserDTO is the buyer summary embedded in admin listings and mutation
// responses.
type OrderUserDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// OrderDTO is the transport shape for a pre-order. ArtToy is always
// populated; User appears on create/update responses and admin reads.
type OrderDTO struct {
	ID          uuid.UUID          `json:"id"`
	OrderAmount int                `json:"orderAmount"`
	ArtToy      *catalog.ArtToyDTO `json:"artToy,omitempty"`
	User        *OrderUserDTO      `json:"user,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CreateOrderInput carries the fields for a new pre-order.
type CreateOrderInput struct {
	ArtToyID    uuid.UUID
	OrderAmount int
}

// FromModel maps an order row onto the transport shape. includeUser controls
// whether the buyer summary is attached.
func FromModel(order *models.Order, includeUser bool) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:          order.ID,
		OrderAmount: order.OrderAmount,
		ArtToy:      catalog.FromModel(order.ArtToy),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if includeUser && order.User != nil {
		dto.User = &OrderUserDTO{
			ID:    order.User.ID,
			Email: order.User.Email,
			Name:  order.User.Name,
		}
	}
	return dto
}
