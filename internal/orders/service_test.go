package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/internal/catalog"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
)

// gormRunner adapts a plain GORM handle to the service's transaction runner.
type gormRunner struct {
	db *gorm.DB
}

func (g gormRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type recordingMetrics struct {
	mu       sync.Mutex
	failures map[string]int
}

func (m *recordingMetrics) IncQuotaAdjustmentFailure(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = map[string]int{}
	}
	m.failures[operation]++
}

func newOrderService(t *testing.T, gdb *gorm.DB) (Service, *recordingMetrics) {
	t.Helper()

	rec := &recordingMetrics{}
	svc, err := NewService(ServiceParams{
		Tx:      gormRunner{db: gdb},
		Repo:    NewRepository(gdb),
		Catalog: catalog.NewRepository(gdb),
		Metrics: rec,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, rec
}

func toyQuota(t *testing.T, gdb *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var toy models.ArtToy
	if err := gdb.First(&toy, "id = ?", id).Error; err != nil {
		t.Fatalf("reload toy: %v", err)
	}
	return toy.AvailableQuota
}

func TestServiceCreateReservesQuota(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	dto, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.OrderAmount != 3 {
		t.Fatalf("unexpected amount %d", dto.OrderAmount)
	}
	if dto.ArtToy == nil || dto.ArtToy.AvailableQuota != 7 {
		t.Fatalf("expected response to carry the post-reservation quota, got %+v", dto.ArtToy)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 7 {
		t.Fatalf("expected stored quota 7, got %d", got)
	}
	if dto.User == nil || dto.User.Email != "buyer@example.com" || dto.User.Name != buyer.Name {
		t.Fatalf("expected buyer display fields on the create response, got %+v", dto.User)
	}
}

func TestServiceCreateAmountOutOfRange(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	for _, amount := range []int{0, -1, 6} {
		_, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
			ArtToyID:    toy.ID,
			OrderAmount: amount,
		})
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
	if got := toyQuota(t, gdb, toy.ID); got != 10 {
		t.Fatalf("rejected orders must not touch quota, got %d", got)
	}
}

func TestServiceCreateQuotaExceeded(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 2)

	_, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 3,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeQuota {
		t.Fatalf("expected quota error, got %v", err)
	}

	var count int64
	if err := gdb.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected order must not persist, found %d rows", count)
	}
}

func TestServiceCreateUnknownToy(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)

	_, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    uuid.New(),
		OrderAmount: 1,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCreateDuplicateOrder(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	if _, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 2,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 1,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 8 {
		t.Fatalf("duplicate attempt must not touch quota, got %d", got)
	}
}

func TestServiceUpdateResizesReservation(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 5)
	actor := memberActor(buyer.ID)

	created, err := svc.Create(context.Background(), actor, CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Growing 2 -> 5 works because the member's own reservation counts
	// toward the ceiling: 3 remaining + 2 held.
	updated, err := svc.Update(context.Background(), actor, created.ID, 5)
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if updated.OrderAmount != 5 {
		t.Fatalf("expected amount 5, got %d", updated.OrderAmount)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 0 {
		t.Fatalf("expected quota 0 after grow, got %d", got)
	}

	shrunk, err := svc.Update(context.Background(), actor, created.ID, 1)
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if shrunk.ArtToy == nil || shrunk.ArtToy.AvailableQuota != 4 {
		t.Fatalf("expected response quota 4 after shrink, got %+v", shrunk.ArtToy)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 4 {
		t.Fatalf("expected quota 4 after shrink, got %d", got)
	}
	if shrunk.User == nil || shrunk.User.Email != "buyer@example.com" {
		t.Fatalf("expected buyer display fields on the update response, got %+v", shrunk.User)
	}
}

func TestServiceUpdateHidesUnknownOrderBeforeAmountCheck(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	owner := seedUser(t, gdb, "owner@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	created, err := svc.Create(context.Background(), memberActor(owner.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The scoped lookup answers first: an invisible order is a 404 even when
	// the requested amount is also out of range.
	for name, id := range map[string]uuid.UUID{
		"unknown order": uuid.New(),
		"foreign order": created.ID,
	} {
		_, err := svc.Update(context.Background(), memberActor(buyer.ID), id, 6)
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}
}

func TestServiceUpdateBeyondCeiling(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	other := seedUser(t, gdb, "other@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 5)

	if _, err := svc.Create(context.Background(), memberActor(other.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 3,
	}); err != nil {
		t.Fatalf("other create: %v", err)
	}
	created, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 1 remaining + 1 held = ceiling 2; asking for 3 must fail.
	_, err = svc.Update(context.Background(), memberActor(buyer.ID), created.ID, 3)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeQuota {
		t.Fatalf("expected quota error, got %v", err)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 1 {
		t.Fatalf("failed update must not touch quota, got %d", got)
	}
}

func TestServiceMemberCannotTouchForeignOrder(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	owner := seedUser(t, gdb, "owner@example.com", enums.UserRoleMember)
	intruder := seedUser(t, gdb, "intruder@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	created, err := svc.Create(context.Background(), memberActor(owner.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for name, attempt := range map[string]func() error{
		"get": func() error {
			_, err := svc.Get(context.Background(), memberActor(intruder.ID), created.ID)
			return err
		},
		"update": func() error {
			_, err := svc.Update(context.Background(), memberActor(intruder.ID), created.ID, 1)
			return err
		},
		"delete": func() error {
			return svc.Delete(context.Background(), memberActor(intruder.ID), created.ID)
		},
	} {
		err := attempt()
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			t.Fatalf("%s: expected not found for foreign member, got %v", name, err)
		}
	}
}

func TestServiceDeleteRestoresQuota(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 5)
	actor := memberActor(buyer.ID)

	created, err := svc.Create(context.Background(), actor, CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), actor, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 5 {
		t.Fatalf("expected quota restored to 5, got %d", got)
	}
	if _, err := svc.Get(context.Background(), actor, created.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestServiceDeleteSurvivesMissingToy(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	toy := seedArtToy(t, gdb, "SKU-001", 5)
	actor := memberActor(buyer.ID)

	created, err := svc.Create(context.Background(), actor, CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := gdb.Delete(&models.ArtToy{}, "id = ?", toy.ID).Error; err != nil {
		t.Fatalf("remove toy: %v", err)
	}

	if err := svc.Delete(context.Background(), actor, created.ID); err != nil {
		t.Fatalf("delete with missing toy: %v", err)
	}
}

func TestServiceAdminListIncludesBuyers(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	buyer := seedUser(t, gdb, "buyer@example.com", enums.UserRoleMember)
	admin := seedUser(t, gdb, "admin@example.com", enums.UserRoleAdmin)
	toy := seedArtToy(t, gdb, "SKU-001", 10)

	if _, err := svc.Create(context.Background(), memberActor(buyer.ID), CreateOrderInput{
		ArtToyID:    toy.ID,
		OrderAmount: 1,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := svc.List(context.Background(), adminActor(admin.ID))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 order, got %d", len(listed))
	}
	if listed[0].User == nil || listed[0].User.Email != "buyer@example.com" {
		t.Fatalf("expected buyer summary on admin read, got %+v", listed[0].User)
	}
}

// TestServiceConcurrentCreatesNeverOversell hammers one toy from many
// goroutines and checks the ledger still balances: successful amounts sum to
// the starting quota and the stored quota lands on zero.
func TestServiceConcurrentCreatesNeverOversell(t *testing.T) {
	gdb := setupOrdersTestDB(t)
	svc, _ := newOrderService(t, gdb)

	const (
		startingQuota = 6
		contenders    = 12
	)
	toy := seedArtToy(t, gdb, "SKU-001", startingQuota)

	buyers := make([]*models.User, contenders)
	for i := range buyers {
		buyers[i] = seedUser(t, gdb, uuid.NewString()+"@example.com", enums.UserRoleMember)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved int
		rejected int
	)
	for _, buyer := range buyers {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			dto, err := svc.Create(context.Background(), memberActor(userID), CreateOrderInput{
				ArtToyID:    toy.ID,
				OrderAmount: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				reserved += dto.OrderAmount
			case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeQuota:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(buyer.ID)
	}
	wg.Wait()

	if reserved != startingQuota {
		t.Fatalf("expected %d reserved units, got %d", startingQuota, reserved)
	}
	if rejected != contenders-startingQuota {
		t.Fatalf("expected %d rejections, got %d", contenders-startingQuota, rejected)
	}
	if got := toyQuota(t, gdb, toy.ID); got != 0 {
		t.Fatalf("expected quota drained to 0, got %d", got)
	}

	var count int64
	if err := gdb.Model(&models.Order{}).Where("art_toy_id = ?", toy.ID).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != startingQuota {
		t.Fatalf("expected %d persisted orders, got %d", startingQuota, count)
	}
}
