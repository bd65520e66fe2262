package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"orderdesk-api/internal/adapters/http/middleware"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/config"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/logger"
	"orderdesk-api/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testdb.Open(t)
	log := logger.Discard()

	svc := services.New(db, repositories.NewAccessTokenRepository(db), domain.SessionTTL, log)
	svc.Users.SetHashCost(bcrypt.MinCost)
	require.NoError(t, svc.Seeder.Run(context.Background(), services.SeedData{
		Roles:         domain.DefaultRoles,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-secret",
	}))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler(log)})
	Setup(app, db, svc, &config.Config{AppMode: "dev"})
	return &testAPI{t: t, app: app}
}

// do sends a request and decodes a JSON body into out when given
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type tokenBody struct {
	ID        string `json:"id"`
	TTL       int64  `json:"ttl"`
	UserID    uint   `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

func (a *testAPI) login(email, password string) tokenBody {
	a.t.Helper()
	var token tokenBody
	status := a.do("POST", "/api/v1/users/login", "", map[string]string{"email": email, "password": password}, &token)
	require.Equal(a.t, fiber.StatusOK, status)
	return token
}

func (a *testAPI) signUp(email string) tokenBody {
	a.t.Helper()
	status := a.do("POST", "/api/v1/users", "", map[string]string{"email": email, "password": "secret"}, nil)
	require.Equal(a.t, fiber.StatusCreated, status)
	return a.login(email, "secret")
}

func TestHealthRoutes(t *testing.T) {
	api := newTestAPI(t)

	var root map[string]any
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/", "", nil, &root))
	assert.Equal(t, "running", root["status"])

	assert.Equal(t, fiber.StatusOK, api.do("GET", "/health", "", nil, nil))
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/metrics", "", nil, nil))
}

func TestLoginIssuesTwoWeekToken(t *testing.T) {
	api := newTestAPI(t)

	token := api.login("admin@example.com", "admin-secret")
	assert.NotEmpty(t, token.ID)
	assert.Equal(t, int64(1209600), token.TTL)
	assert.NotZero(t, token.UserID)
	assert.NotEmpty(t, token.CreatedAt)
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]string{"email": "admin@example.com", "password": "wrong"}
	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/login", "", body, nil))

	body = map[string]string{"email": "nobody@example.com", "password": "wrong"}
	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/login", "", body, nil))

	var failed struct {
		Error string `json:"error"`
	}
	body = map[string]string{"email": "admin@example.com", "password": ""}
	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/login", "", body, &failed))
	assert.Equal(t, domain.ErrLoginFailed.Error(), failed.Error)

	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/login", "", map[string]string{}, nil))
}

func TestLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com", "admin-secret")

	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/users/me", token.ID, nil, nil))
	assert.Equal(t, fiber.StatusNoContent, api.do("POST", "/api/v1/users/logout", token.ID, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, api.do("GET", "/api/v1/users/me", token.ID, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/logout", token.ID, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users/logout", "", nil, nil))
}

func TestSignUpIsPublicButCannotGrantRoles(t *testing.T) {
	api := newTestAPI(t)

	var user map[string]any
	status := api.do("POST", "/api/v1/users", "", map[string]any{"email": "ada@example.com", "password": "secret", "firstName": "Ada"}, &user)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Ada", user["firstName"])
	assert.NotContains(t, user, "password")

	status = api.do("POST", "/api/v1/users", "", map[string]any{"email": "eve@example.com", "password": "secret", "roleIds": []int{1}}, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	assert.Equal(t, fiber.StatusUnauthorized, api.do("POST", "/api/v1/users", "garbage", map[string]any{"email": "x@example.com", "password": "secret"}, nil))
}

func TestUserRoutesAccess(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")
	ada := api.signUp("ada@example.com")
	bob := api.signUp("bob@example.com")

	assert.Equal(t, fiber.StatusForbidden, api.do("GET", "/api/v1/users", ada.ID, nil, nil))
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/users", admin.ID, nil, nil))

	adaPath := fmt.Sprintf("/api/v1/users/%d", ada.UserID)
	assert.Equal(t, fiber.StatusOK, api.do("GET", adaPath, ada.ID, nil, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("GET", adaPath, bob.ID, nil, nil))
	assert.Equal(t, fiber.StatusOK, api.do("PATCH", adaPath, ada.ID, map[string]any{"lastName": "Lovelace"}, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("PATCH", adaPath, ada.ID, map[string]any{"roleIds": []int{1}}, nil))

	var count struct {
		Count int64 `json:"count"`
	}
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/users/count", admin.ID, nil, &count))
	assert.Equal(t, int64(3), count.Count)
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")
	ada := api.signUp("ada@example.com")

	product := map[string]any{"name": "pizza", "price": 10}
	assert.Equal(t, fiber.StatusUnauthorized, api.do("GET", "/api/v1/products", "", nil, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("POST", "/api/v1/products", ada.ID, product, nil))
	assert.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/products", admin.ID, product, nil))

	var products []map[string]any
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/products", ada.ID, nil, &products))
	assert.Len(t, products, 1)

	assert.Equal(t, fiber.StatusBadRequest, api.do("POST", "/api/v1/products", admin.ID, map[string]any{"name": "free lunch", "price": -1}, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("GET", "/api/v1/roles", ada.ID, nil, nil))
}

func TestResourceNotFound(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")

	assert.Equal(t, fiber.StatusNotFound, api.do("GET", "/api/v1/menus/500000", admin.ID, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, api.do("HEAD", "/api/v1/menus/500000", admin.ID, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, api.do("PATCH", "/api/v1/menus/500000", admin.ID, map[string]any{"name": "updatedName"}, nil))
	assert.Equal(t, fiber.StatusNotFound, api.do("DELETE", "/api/v1/menus/500000", admin.ID, nil, nil))
}

func TestMenuLifecycle(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")

	var menu map[string]any
	require.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/menus", admin.ID, map[string]any{"name": "test"}, &menu))
	path := fmt.Sprintf("/api/v1/menus/%v", menu["id"])

	assert.Equal(t, fiber.StatusOK, api.do("HEAD", path, admin.ID, nil, nil))

	var fetched map[string]any
	assert.Equal(t, fiber.StatusOK, api.do("GET", path, admin.ID, nil, &fetched))
	assert.Equal(t, "test", fetched["name"])

	assert.Equal(t, fiber.StatusOK, api.do("PUT", path, admin.ID, map[string]any{"name": "renamed"}, &fetched))
	assert.Equal(t, "renamed", fetched["name"])

	assert.Equal(t, fiber.StatusNoContent, api.do("DELETE", path, admin.ID, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, api.do("GET", path, admin.ID, nil, nil))
}

func TestOrderPricingAndOwnership(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")
	ada := api.signUp("ada@example.com")
	bob := api.signUp("bob@example.com")

	var promo, product, menu map[string]any
	require.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/promotions", admin.ID, map[string]any{"name": "spring", "value": 42}, &promo))
	require.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/products", admin.ID,
		map[string]any{"name": "pizza", "price": 10, "promotionIds": []any{promo["id"]}}, &product))
	require.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/menus", admin.ID,
		map[string]any{"name": "lunch", "productIds": []any{product["id"]}, "promotionIds": []any{promo["id"]}}, &menu))

	var order map[string]any
	status := api.do("POST", "/api/v1/orders", ada.ID, map[string]any{
		"price":      0.01,
		"userId":     bob.UserID,
		"productIds": []any{product["id"]},
		"menuIds":    []any{menu["id"]},
	}, &order)
	require.Equal(t, fiber.StatusCreated, status)
	assert.InDelta(t, 9.164, order["price"], 1e-9)
	assert.Equal(t, float64(ada.UserID), order["userId"], "non-admin orders belong to the caller")

	path := fmt.Sprintf("/api/v1/orders/%v", order["id"])
	assert.Equal(t, fiber.StatusOK, api.do("GET", path, ada.ID, nil, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("GET", path, bob.ID, nil, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("DELETE", path, bob.ID, nil, nil))
	assert.Equal(t, fiber.StatusForbidden, api.do("PATCH", path, ada.ID, map[string]any{"userId": bob.UserID}, nil))

	var count struct {
		Count int64 `json:"count"`
	}
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/orders/count", bob.ID, nil, &count))
	assert.Zero(t, count.Count)
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/orders/count", ada.ID, nil, &count))
	assert.Equal(t, int64(1), count.Count)

	var orders []map[string]any
	assert.Equal(t, fiber.StatusOK, api.do("GET", "/api/v1/orders", bob.ID, nil, &orders))
	assert.Empty(t, orders)

	assert.Equal(t, fiber.StatusNoContent, api.do("DELETE", path, admin.ID, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, api.do("GET", path, ada.ID, nil, nil))
}

func TestOrderDoubleAttachIsConflict(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", "admin-secret")

	var product map[string]any
	require.Equal(t, fiber.StatusCreated, api.do("POST", "/api/v1/products", admin.ID, map[string]any{"name": "soda", "price": 2}, &product))

	status := api.do("POST", "/api/v1/orders", admin.ID, map[string]any{"productIds": []any{product["id"], product["id"]}}, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status = api.do("POST", "/api/v1/orders", admin.ID, map[string]any{"productIds": []any{12345}}, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
