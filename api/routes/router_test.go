package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	catalogsvc "github.com/pixelvault/arttoys-backend/internal/catalog"
	ordersvc "github.com/pixelvault/arttoys-backend/internal/orders"
	usersvc "github.com/pixelvault/arttoys-backend/internal/users"
	pkgAuth "github.com/pixelvault/arttoys-backend/pkg/auth"
	"github.com/pixelvault/arttoys-backend/pkg/config"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Create(ctx context.Context, input catalogsvc.CreateArtToyInput) (*catalogsvc.ArtToyDTO, error) {
	return &catalogsvc.ArtToyDTO{ID: uuid.New()}, nil
}
func (stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*catalogsvc.ArtToyDTO, error) {
	return &catalogsvc.ArtToyDTO{ID: id}, nil
}
func (stubCatalogService) List(ctx context.Context) ([]catalogsvc.ArtToyDTO, error) {
	return nil, nil
}
func (stubCatalogService) Update(ctx context.Context, id uuid.UUID, input catalogsvc.UpdateArtToyInput) (*catalogsvc.ArtToyDTO, error) {
	return &catalogsvc.ArtToyDTO{ID: id}, nil
}
func (stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubOrderService struct{}

func (stubOrderService) Create(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: uuid.New()}, nil
}
func (stubOrderService) Get(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: id}, nil
}
func (stubOrderService) List(ctx context.Context, actor ordersvc.Actor) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}
func (stubOrderService) Update(ctx context.Context, actor ordersvc.Actor, id uuid.UUID, orderAmount int) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: id}, nil
}
func (stubOrderService) Delete(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) error {
	return nil
}

type stubUserService struct{}

func (stubUserService) Register(ctx context.Context, input usersvc.RegisterInput) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{ID: uuid.New()}, nil
}
func (stubUserService) RegisterAdmin(ctx context.Context, input usersvc.RegisterInput) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{ID: uuid.New()}, nil
}
func (stubUserService) Login(ctx context.Context, input usersvc.LoginInput) (*usersvc.LoginResult, error) {
	return &usersvc.LoginResult{Token: "token"}, nil
}
func (stubUserService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env, Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	return NewRouter(RouterParams{
		Config:   testConfig(env),
		Sessions: stubSessionChecker{},
		Catalog:  stubCatalogService{},
		Orders:   stubOrderService{},
		Users:    stubUserService{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(
		config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		time.Now(),
		pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role, JTI: uuid.NewString()},
	)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCatalogReadsArePublic(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)

	for _, target := range []string{"/api/v1/arttoys", "/api/v1/arttoys/" + uuid.NewString()} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 without a token for %s, got %d", target, rec.Code)
		}
	}
}

func TestCatalogWritesRequireAuth(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)
	body := `{"sku":"s","name":"n","description":"d","arrivalDate":"2030-01-15","availableQuota":1,"posterPicture":"https://cdn.example.com/p.png"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/arttoys", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)
	body := `{"sku":"s","name":"n","description":"d","arrivalDate":"2030-01-15","availableQuota":1,"posterPicture":"https://cdn.example.com/p.png"}`

	member := httptest.NewRequest(http.MethodPost, "/api/v1/arttoys", strings.NewReader(body))
	member.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, member)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member, got %d", rec.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/arttoys", strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d", rec.Code)
	}
}

func TestCatalogReadsOpenToMembers(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arttoys", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for member read, got %d", rec.Code)
	}
}

func TestOrderCreateRequiresMemberRole(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)
	body := `{"artToyId":"` + uuid.NewString() + `","orderAmount":1}`

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, admin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin order create, got %d", rec.Code)
	}

	member := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	member.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleMember))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, member)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for member order create, got %d", rec.Code)
	}
}

func TestAdminRegisterClosedInProduction(t *testing.T) {
	prod := newTestRouter(t, config.AppEnvProd)
	body := `{"email":"admin@example.com","password":"long-enough","name":"Admin"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register-admin", strings.NewReader(body))
	rec := httptest.NewRecorder()
	prod.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected the route to be absent in production, got %d", rec.Code)
	}

	dev := newTestRouter(t, config.AppEnvDev)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register-admin", strings.NewReader(body))
	rec = httptest.NewRecorder()
	dev.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 in dev, got %d", rec.Code)
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	router := newTestRouter(t, config.AppEnvProd)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
