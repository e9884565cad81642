package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/pkg/db/models"
)

// ErrQuotaGuard is returned when the conditional quota update matched no row
// because the adjustment would have driven available_quota below zero.
var ErrQuotaGuard = errors.New("quota adjustment rejected by non-negativity guard")

// Repository owns art toy persistence. AdjustQuota is the only write path for
// available_quota used by order mutations; it is a single conditional UPDATE
// so concurrent reservations can never oversell.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to art toy operations.
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

// Create persists a new art toy row.
func (r *Repository) Create(ctx context.Context, toy *models.ArtToy) (*models.ArtToy, error) {
	if err := r.db.WithContext(ctx).Create(toy).Error; err != nil {
		return nil, err
	}
	return toy, nil
}

// FindByID loads an art toy by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ArtToy, error) {
	var toy models.ArtToy
	if err := r.db.WithContext(ctx).First(&toy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &toy, nil
}

// FindBySKU loads an art toy by its natural key.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.ArtToy, error) {
	var toy models.ArtToy
	if err := r.db.WithContext(ctx).First(&toy, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &toy, nil
}

// List returns every art toy row.
func (r *Repository) List(ctx context.Context) ([]models.ArtToy, error) {
	var toys []models.ArtToy
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&toys).Error; err != nil {
		return nil, err
	}
	return toys, nil
}

// Save persists the provided art toy.
func (r *Repository) Save(ctx context.Context, toy *models.ArtToy) error {
	if toy == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Save(toy).Error
}

// Delete removes the art toy row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.ArtToy{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustQuota applies delta (positive restores, negative reserves) to
// available_quota in one statement guarded against going negative. Callers
// must have verified the toy exists; a zero row count here means the guard
// fired, not that the row is missing.
func (r *Repository) AdjustQuota(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ArtToy{}).
		Where("id = ? AND available_quota + ? >= 0", id, delta).
		Update("available_quota", gorm.Expr("available_quota + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaGuard
	}
	return nil
}
