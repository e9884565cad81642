package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pixelvault/arttoys-backend/pkg/db/models"
)

// Repository owns order persistence. Reads are actor-scoped: members only
// ever see their own rows, admins see the whole ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindScoped loads one order visible to the actor. A member asking for
// another user's order gets gorm.ErrRecordNotFound, never a hint that the
// row exists.
func (r *Repository) FindScoped(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	query := r.db.WithContext(ctx).Preload("ArtToy")
	if actor.IsAdmin() {
		query = query.Preload("User")
	} else {
		query = query.Where("user_id = ?", actor.UserID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserAndToy loads the actor's existing order for a toy, if any.
func (r *Repository) FindByUserAndToy(ctx context.Context, userID, artToyID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		First(&order, "user_id = ? AND art_toy_id = ?", userID, artToyID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBuyer loads the buyer row so mutation responses can carry the user
// display fields.
func (r *Repository) FindBuyer(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListScoped returns the orders visible to the actor, newest first.
func (r *Repository) ListScoped(ctx context.Context, actor Actor) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("ArtToy").Order("created_at DESC")
	if actor.IsAdmin() {
		query = query.Preload("User")
	} else {
		query = query.Where("user_id = ?", actor.UserID)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists the provided order.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	if order == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// Delete removes the order row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

// CountByArtToy reports how many live orders reference the toy. Catalog uses
// it to block deleting a listing that still has reservations.
func (r *Repository) CountByArtToy(ctx context.Context, artToyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("art_toy_id = ?", artToyID).
		Count(&count).Error
	return count, err
}
