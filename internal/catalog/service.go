package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/pkg/db"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
)

// orderCounter reports how many live orders reference a toy. Implemented by
// the orders repository; kept as a local interface so catalog stays a leaf.
type orderCounter interface {
	CountByArtToy(ctx context.Context, artToyID uuid.UUID) (int64, error)
}

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateArtToyInput) (*ArtToyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ArtToyDTO, error)
	List(ctx context.Context) ([]ArtToyDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateArtToyInput) (*ArtToyDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   *Repository
	orders orderCounter
	now    func() time.Time
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   *Repository
	Orders orderCounter
	Now    func() time.Time
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order counter is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, orders: params.Orders, now: now}, nil
}

func (s *service) Create(ctx context.Context, input CreateArtToyInput) (*ArtToyDTO, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	toy := input.toModel()
	created, err := s.repo.Create(ctx, toy)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_art_toys_sku") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create art toy")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ArtToyDTO, error) {
	toy, err := s.loadToy(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(toy), nil
}

func (s *service) List(ctx context.Context) ([]ArtToyDTO, error) {
	toys, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list art toys")
	}
	out := make([]ArtToyDTO, 0, len(toys))
	for i := range toys {
		out = append(out, *FromModel(&toys[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateArtToyInput) (*ArtToyDTO, error) {
	toy, err := s.loadToy(ctx, id)
	if err != nil {
		return nil, err
	}

	// Arrival date is re-validated against today only when the update
	// actually supplies it.
	if input.ArrivalDate != nil && beforeToday(*input.ArrivalDate, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "arrival date cannot be earlier than current date")
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		toy.SKU = sku
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		toy.Name = *input.Name
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
		}
		toy.Description = *input.Description
	}
	if input.ArrivalDate != nil {
		toy.ArrivalDate = *input.ArrivalDate
	}
	if input.AvailableQuota != nil {
		// Admin quota overwrites are authoritative; they are not checked
		// against outstanding orders.
		if *input.AvailableQuota < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "available quota cannot be negative")
		}
		toy.AvailableQuota = *input.AvailableQuota
	}
	if input.PosterPicture != nil {
		if strings.TrimSpace(*input.PosterPicture) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "poster picture cannot be empty")
		}
		toy.PosterPicture = *input.PosterPicture
	}

	if err := s.repo.Save(ctx, toy); err != nil {
		if db.IsUniqueViolation(err, "idx_art_toys_sku") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update art toy")
	}
	return FromModel(toy), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadToy(ctx, id); err != nil {
		return err
	}

	live, err := s.orders.CountByArtToy(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count live orders")
	}
	if live > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "art toy has live orders and cannot be deleted")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete art toy")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "art toy not found")
	}
	return nil
}

func (s *service) loadToy(ctx context.Context, id uuid.UUID) (*models.ArtToy, error) {
	toy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "art toy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load art toy")
	}
	return toy, nil
}

func (s *service) validateCreate(input CreateArtToyInput) error {
	switch {
	case strings.TrimSpace(input.SKU) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	case strings.TrimSpace(input.Name) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case strings.TrimSpace(input.Description) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	case strings.TrimSpace(input.PosterPicture) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "poster picture is required")
	case input.ArrivalDate.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "arrival date is required")
	case input.AvailableQuota < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "available quota cannot be negative")
	}
	if beforeToday(input.ArrivalDate, s.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "arrival date cannot be earlier than current date")
	}
	return nil
}

// beforeToday compares at day granularity: an arrival date equal to today is
// acceptable, yesterday is not.
func beforeToday(arrival, now time.Time) bool {
	ay, am, ad := arrival.Date()
	ny, nm, nd := now.Date()
	arrivalDay := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return arrivalDay.Before(today)
}
