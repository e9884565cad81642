package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a member's pre-order against one ArtToy. The composite unique
// index caps each user at a single live order per toy.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:orders_user_art_toy_key"`
	ArtToyID    uuid.UUID `gorm:"column:art_toy_id;type:uuid;not null;uniqueIndex:orders_user_art_toy_key"`
	OrderAmount int       `gorm:"column:order_amount;not null"`
	User        *User     `gorm:"foreignKey:UserID"`
	ArtToy      *ArtToy   `gorm:"foreignKey:ArtToyID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
