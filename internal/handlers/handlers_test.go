package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelstore/internal/cache"
	"wheelstore/internal/config"
	"wheelstore/internal/database"
	"wheelstore/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, adminPassword string) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "data.json"))
	require.NoError(t, err)

	cfg := &config.Config{AdminUsername: "admin", AdminPassword: adminPassword}
	carts := services.NewCartService(db, cache.NewMemoryCache())
	email := services.NewEmailService(cfg)
	security := services.NewSecurityLogger(filepath.Join(dir, "security.log"))
	t.Cleanup(security.Close)

	return NewHandler(db, cfg, carts, email, security).Routes()
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// sessionCookieFrom registers and logs in a user, returning the minted
// session cookie.
func sessionCookieFrom(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()

	creds := map[string]string{"email": "shopper@example.com", "password": "secret123"}
	w := doJSON(r, http.MethodPost, "/api/register", creds)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", creds)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t, "")

	for _, tc := range []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing fields", map[string]string{"email": "", "password": ""}, "Email and password are required"},
		{"bad email", map[string]string{"email": "nope", "password": "secret123"}, "Invalid email format"},
		{"short password", map[string]string{"email": "a@b.com", "password": "short"}, "Password must be at least 6 characters"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.OK)
			assert.Equal(t, tc.msg, resp.Message)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestRouter(t, "")
	creds := map[string]string{"email": "shopper@example.com", "password": "secret123"}

	w := doJSON(r, http.MethodPost, "/api/register", creds)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/register", creds)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w).Message)
}

func TestRegisterNeverLeaksPasswordHash(t *testing.T) {
	r := newTestRouter(t, "")
	creds := map[string]string{"email": "shopper@example.com", "password": "secret123"}

	w := doJSON(r, http.MethodPost, "/api/register", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/login", map[string]string{"email": "ghost@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w).Message)
}

func TestCurrentUserRequiresSession(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodGet, "/api/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookie := sessionCookieFrom(t, r)
	w = doJSON(r, http.MethodGet, "/api/user", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProductsIsPublic(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	require.True(t, resp.OK)
	products, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, products, 10)
}

func TestCartEndpointsRequireSession(t *testing.T) {
	r := newTestRouter(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodPut, "/api/cart/1"},
		{http.MethodDelete, "/api/cart/1"},
		{http.MethodDelete, "/api/cart"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders"},
	} {
		w := doJSON(r, tc.method, tc.path, map[string]int{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Not authenticated", decode(t, w).Message)
	}
}

func TestAddToCartValidation(t *testing.T) {
	r := newTestRouter(t, "")
	cookie := sessionCookieFrom(t, r)

	w := doJSON(r, http.MethodPost, "/api/cart", map[string]int{"product_id": 1, "quantity": 0}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/cart", map[string]int{"product_id": 999, "quantity": 1}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w).Message)

	w = doJSON(r, http.MethodPost, "/api/cart", map[string]int{"product_id": 1, "quantity": 1}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateCartItemValidation(t *testing.T) {
	r := newTestRouter(t, "")
	cookie := sessionCookieFrom(t, r)

	w := doJSON(r, http.MethodPut, "/api/cart/not-a-number", map[string]int{"quantity": 1}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/api/cart/1", map[string]int{"quantity": 0}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/api/cart/999", map[string]int{"quantity": 2}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	r := newTestRouter(t, "")
	cookie := sessionCookieFrom(t, r)

	form := map[string]string{
		"customer_name":  "Ada Shopper",
		"customer_email": "ada@example.com",
		"phone":          "+49 170 1234567",
		"address":        "Wheelstrasse 1, Berlin",
	}

	// Missing field.
	incomplete := map[string]string{"customer_name": "Ada Shopper"}
	w := doJSON(r, http.MethodPost, "/api/orders", incomplete, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "required")

	// Bad email.
	bad := map[string]string{}
	for k, v := range form {
		bad[k] = v
	}
	bad["customer_email"] = "nope"
	w = doJSON(r, http.MethodPost, "/api/orders", bad, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email format", decode(t, w).Message)

	// Empty cart.
	w = doJSON(r, http.MethodPost, "/api/orders", form, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", decode(t, w).Message)

	// The real thing.
	w = doJSON(r, http.MethodPost, "/api/cart", map[string]int{"product_id": 1, "quantity": 2}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/orders", form, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	require.True(t, resp.OK)

	order, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 39.98, order["total_price"].(float64), 0.001)
	assert.Equal(t, "pending", order["status"])
}

func TestAdminLockedWithoutPassword(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/products", map[string]interface{}{"name": "X", "price": 1.0, "type": "t"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminProductCRUD(t *testing.T) {
	r := newTestRouter(t, "hunter2")

	// Wrong password first.
	w := doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)

	var admin *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "admin_session" {
			admin = c
		}
	}
	require.NotNil(t, admin)

	form := map[string]interface{}{
		"name":  "Steel Wheel Ø120mm",
		"price": 35.00,
		"type":  "steel",
		"image": "images/wheel11.jpg",
	}
	w = doJSON(r, http.MethodPost, "/api/admin/products", form, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode(t, w).Data.(map[string]interface{})
	id := int(created["id"].(float64))
	assert.Equal(t, 11, id)

	form["price"] = 32.50
	w = doJSON(r, http.MethodPut, "/api/admin/products/11", form, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/api/admin/products/999", form, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/products/11", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	// The public catalog is back to the seed.
	w = doJSON(r, http.MethodGet, "/api/products", nil)
	resp := decode(t, w)
	assert.Len(t, resp.Data.([]interface{}), 10)
}
