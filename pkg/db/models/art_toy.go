package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArtToy is a limited-edition listing open for pre-orders. AvailableQuota is
// the remaining orderable units; only catalog.Repository.AdjustQuota may move
// it on behalf of order mutations.
type ArtToy struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SKU            string    `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name           string    `gorm:"column:name;not null"`
	Description    string    `gorm:"column:description;not null"`
	ArrivalDate    time.Time `gorm:"column:arrival_date;type:date;not null"`
	AvailableQuota int       `gorm:"column:available_quota;not null;default:0"`
	PosterPicture  string    `gorm:"column:poster_picture;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *ArtToy) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
