package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/internal/catalog"
	"github.com/pixelvault/arttoys-backend/pkg/db"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
	"github.com/pixelvault/arttoys-backend/pkg/logger"
)

const (
	// Order amounts outside [MinOrderAmount, MaxOrderAmount] are rejected
	// before any row is touched.
	MinOrderAmount = 1
	MaxOrderAmount = 5
)

// txRunner executes fn inside one database transaction. Satisfied by
// *db.Client in production and by a plain GORM handle in tests.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// quotaMetrics records quota guard rejections. Satisfied by
// *metrics.HTTPMetrics.
type quotaMetrics interface {
	IncQuotaAdjustmentFailure(operation string)
}

// Service exposes the order ledger operations. Every mutation runs in a
// single transaction so the quota and the ledger can never disagree.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, actor Actor) ([]OrderDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, orderAmount int) (*OrderDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	tx      txRunner
	repo    *Repository
	catalog *catalog.Repository
	metrics quotaMetrics
	log     *logger.Logger
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Tx      txRunner
	Repo    *Repository
	Catalog *catalog.Repository
	Metrics quotaMetrics
	Logger  *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{
		tx:      params.Tx,
		repo:    params.Repo,
		catalog: params.Catalog,
		metrics: params.Metrics,
		log:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error) {
	if err := validateAmount(input.OrderAmount); err != nil {
		return nil, err
	}
	if input.ArtToyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "art toy id is required")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		toy, err := catalogRepo.FindByID(ctx, input.ArtToyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "art toy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load art toy")
		}
		if toy.AvailableQuota < input.OrderAmount {
			return pkgerrors.New(pkgerrors.CodeQuota, "order amount exceeds available quota")
		}

		if _, err := ordersRepo.FindByUserAndToy(ctx, actor.UserID, input.ArtToyID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "an order for this art toy already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing order")
		}

		order := &models.Order{
			UserID:      actor.UserID,
			ArtToyID:    input.ArtToyID,
			OrderAmount: input.OrderAmount,
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "orders_user_art_toy_key") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an order for this art toy already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := catalogRepo.AdjustQuota(ctx, input.ArtToyID, -input.OrderAmount); err != nil {
			return s.quotaError(ctx, err, "create")
		}

		buyer, err := ordersRepo.FindBuyer(ctx, order.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
		}

		order.ArtToy = toy
		order.ArtToy.AvailableQuota -= input.OrderAmount
		order.User = buyer
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Mutation responses always carry the buyer display fields.
	return FromModel(created, true), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.findScoped(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(order, actor.IsAdmin()), nil
}

func (s *service) List(ctx context.Context, actor Actor) ([]OrderDTO, error) {
	rows, err := s.repo.ListScoped(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], actor.IsAdmin()))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, orderAmount int) (*OrderDTO, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		// Scoped lookup first: a request against an invisible order is a 404
		// even when the amount is also out of range.
		order, err := s.findScoped(ctx, ordersRepo, actor, id)
		if err != nil {
			return err
		}
		if err := validateAmount(orderAmount); err != nil {
			return err
		}

		toy, err := catalogRepo.FindByID(ctx, order.ArtToyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "art toy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load art toy")
		}

		// The caller's own reservation is available to them again when
		// resizing, so the ceiling is quota plus the old amount.
		if toy.AvailableQuota+order.OrderAmount < orderAmount {
			return pkgerrors.New(pkgerrors.CodeQuota, "order amount exceeds available quota")
		}

		delta := order.OrderAmount - orderAmount
		order.OrderAmount = orderAmount
		if err := ordersRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if delta != 0 {
			if err := catalogRepo.AdjustQuota(ctx, order.ArtToyID, delta); err != nil {
				return s.quotaError(ctx, err, "update")
			}
		}

		if order.User == nil {
			buyer, err := ordersRepo.FindBuyer(ctx, order.UserID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
			}
			order.User = buyer
		}

		order.ArtToy = toy
		order.ArtToy.AvailableQuota += delta
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated, true), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := s.findScoped(ctx, ordersRepo, actor, id)
		if err != nil {
			return err
		}

		// A toy removed from the catalog leaves nothing to restore; the
		// order itself still gets cancelled.
		_, err = catalogRepo.FindByID(ctx, order.ArtToyID)
		switch {
		case err == nil:
			if err := catalogRepo.AdjustQuota(ctx, order.ArtToyID, order.OrderAmount); err != nil {
				return s.quotaError(ctx, err, "delete")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// skip restore
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load art toy")
		}

		if err := ordersRepo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) findScoped(ctx context.Context, repo *Repository, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindScoped(ctx, id, actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// quotaError converts a quota guard rejection into the wire error and records
// the rejection. Guard failures after the precheck mean a concurrent writer
// won the race.
func (s *service) quotaError(ctx context.Context, err error, operation string) error {
	if !errors.Is(err, catalog.ErrQuotaGuard) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust quota")
	}
	if s.metrics != nil {
		s.metrics.IncQuotaAdjustmentFailure(operation)
	}
	if s.log != nil {
		ctx = s.log.WithField(ctx, "operation", operation)
		s.log.Warn(ctx, "quota adjustment rejected, rolling back order mutation")
	}
	return pkgerrors.Wrap(pkgerrors.CodeQuota, err, "order amount exceeds available quota")
}

func validateAmount(amount int) error {
	if amount < MinOrderAmount || amount > MaxOrderAmount {
		return pkgerrors.New(pkgerrors.CodeValidation, "order amount must be between 1 and 5")
	}
	return nil
}
