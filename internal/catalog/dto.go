package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelvault/arttoys-backend/pkg/db/models"
)

// arrivalDateLayout is the day-granular wire format for arrival dates.
const arrivalDateLayout = "2006-01-02"

// ArtToyDTO is the transport shape for a catalog listing. Field names follow
// the wire format the existing frontend consumes.
type ArtToyDTO struct {
	ID             uuid.UUID `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ArrivalDate    string    `json:"arrivalDate"`
	AvailableQuota int       `json:"availableQuota"`
	PosterPicture  string    `json:"posterPicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateArtToyInput carries the validated fields for a new listing.
type CreateArtToyInput struct {
	SKU            string
	Name           string
	Description    string
	ArrivalDate    time.Time
	AvailableQuota int
	PosterPicture  string
}

// UpdateArtToyInput applies only the fields present.
type UpdateArtToyInput struct {
	SKU            *string
	Name           *string
	Description    *string
	ArrivalDate    *time.Time
	AvailableQuota *int
	PosterPicture  *string
}

func (in CreateArtToyInput) toModel() *models.ArtToy {
	return &models.ArtToy{
		SKU:            in.SKU,
		Name:           in.Name,
		Description:    in.Description,
		ArrivalDate:    in.ArrivalDate,
		AvailableQuota: in.AvailableQuota,
		PosterPicture:  in.PosterPicture,
	}
}

// FromModel maps the persistence row onto the transport shape.
func FromModel(toy *models.ArtToy) *ArtToyDTO {
	if toy == nil {
		return nil
	}
	return &ArtToyDTO{
		ID:             toy.ID,
		SKU:            toy.SKU,
		Name:           toy.Name,
		Description:    toy.Description,
		ArrivalDate:    toy.ArrivalDate.Format(arrivalDateLayout),
		AvailableQuota: toy.AvailableQuota,
		PosterPicture:  toy.PosterPicture,
		CreatedAt:      toy.CreatedAt,
		UpdatedAt:      toy.UpdatedAt,
	}
}
