package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/testutil/apitest"
)

func request(method, path, token string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetCartAnonymousIsEmpty(t *testing.T) {
	env := apitest.New(t)

	w := env.Do(request(http.MethodGet, "/v1/cart", "", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[handlers.CartResponse](t, w)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.ItemCount)
	assert.Equal(t, "0.00", resp.Totals.Total.StringFixed(2))
}

func TestAddToCartRequiresSession(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")

	w := env.Do(request(http.MethodPost, "/v1/cart/items", "", map[string]any{"product_id": 7}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	res := decode[cart.Result](t, w)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestAddTwiceMergesIntoOneRow(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)

	w := env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7, "quantity": 1}))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, cart.MsgAdded, decode[cart.Result](t, w).Message)

	w = env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7, "quantity": 2}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cart.MsgUpdated, decode[cart.Result](t, w).Message)

	rows := env.DB.CartRows(userID)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Quantity)

	w = env.Do(request(http.MethodGet, "/v1/cart", token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.CartResponse](t, w)
	assert.Equal(t, 3, resp.ItemCount)
	assert.Equal(t, "37.50", resp.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", resp.Totals.Shipping.StringFixed(2))
	assert.Equal(t, "3.19", resp.Totals.Tax.StringFixed(2))
	assert.Equal(t, "50.69", resp.Totals.Total.StringFixed(2))
}

func TestAddRejectsNegativeQuantity(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)

	w := env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7, "quantity": -2}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.DB.CartRows(userID))
}

func TestUpdateAndRemoveAreOwnerScoped(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	annID, ann := env.User(t, "ann@example.com", false)
	_, bob := env.User(t, "bob@example.com", false)

	w := env.Do(request(http.MethodPost, "/v1/cart/items", ann, map[string]any{"product_id": 7, "quantity": 2}))
	require.Equal(t, http.StatusCreated, w.Code)
	itemID := env.DB.CartRows(annID)[0].ID
	path := fmt.Sprintf("/v1/cart/items/%d", itemID)

	w = env.Do(request(http.MethodPut, path, bob, map[string]any{"quantity": 9}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.Do(request(http.MethodDelete, path, bob, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	rows := env.DB.CartRows(annID)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Quantity)

	w = env.Do(request(http.MethodPut, path, "", map[string]any{"quantity": 9}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateToZeroRemoves(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)

	env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7}))
	itemID := env.DB.CartRows(userID)[0].ID

	w := env.Do(request(http.MethodPut, fmt.Sprintf("/v1/cart/items/%d", itemID), token, map[string]any{"quantity": 0}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cart.MsgRemoved, decode[cart.Result](t, w).Message)
	assert.Empty(t, env.DB.CartRows(userID))
}

func TestUpdateRequiresQuantity(t *testing.T) {
	env := apitest.New(t)
	_, token := env.User(t, "ann@example.com", false)

	w := env.Do(request(http.MethodPut, "/v1/cart/items/1", token, map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.Do(request(http.MethodPut, "/v1/cart/items/abc", token, map[string]any{"quantity": 1}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationsPublishInvalidations(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)
	ch, cancel := env.Hub.Subscribe(userID)
	defer cancel()

	env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7}))
	env.Do(request(http.MethodDelete, "/v1/cart", token, nil))

	first := <-ch
	assert.Equal(t, []string{"/cart", "/"}, first.Paths)
	second := <-ch
	assert.Equal(t, "cart.clear", second.Reason)
}

func validShipping() map[string]string {
	return map[string]string{
		"fullName":   "Ann Lee",
		"email":      "ann@example.com",
		"address":    "1 Main St",
		"city":       "Springfield",
		"postalCode": "12345",
		"country":    "US",
	}
}

func TestCheckoutEmptyCartRedirectsToProducts(t *testing.T) {
	env := apitest.New(t)
	_, token := env.User(t, "ann@example.com", false)

	w := env.Do(request(http.MethodGet, "/v1/checkout", token, nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/products", w.Header().Get("Location"))

	w = env.Do(request(http.MethodPost, "/v1/checkout/confirm", token, validShipping()))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/products", decode[map[string]any](t, w)["redirect"])
}

func TestCheckoutRequiresSession(t *testing.T) {
	env := apitest.New(t)

	w := env.Do(request(http.MethodGet, "/v1/checkout", "", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRemoveOnlyItemThenCheckoutRedirects(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)

	env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7}))
	itemID := env.DB.CartRows(userID)[0].ID

	w := env.Do(request(http.MethodDelete, fmt.Sprintf("/v1/cart/items/%d", itemID), token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(request(http.MethodGet, "/v1/checkout", token, nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestConfirmCheckoutClearsCart(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)
	env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7, "quantity": 2}))

	w := env.Do(request(http.MethodGet, "/v1/checkout", token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(request(http.MethodPost, "/v1/checkout/confirm", token, validShipping()))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/order-success", body["redirect"])
	assert.Empty(t, env.DB.CartRows(userID))
}

func TestConfirmCheckoutValidatesForm(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(7, "Lamp", "12.50")
	userID, token := env.User(t, "ann@example.com", false)
	env.Do(request(http.MethodPost, "/v1/cart/items", token, map[string]any{"product_id": 7}))

	form := validShipping()
	form["email"] = "not-an-email"
	w := env.Do(request(http.MethodPost, "/v1/checkout/confirm", token, form))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.DB.CartRows(userID), 1)
}

func TestRegisterLoginMe(t *testing.T) {
	env := apitest.New(t)

	w := env.Do(request(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"fullName": "Ann Lee", "email": "ann@example.com", "password": "password123",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.Do(request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.Do(request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "password123",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = env.Do(request(http.MethodGet, "/v1/me", token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "ann@example.com", me["email"])
	assert.Equal(t, false, me["isAdmin"])
}

func TestProductReads(t *testing.T) {
	env := apitest.New(t)
	env.DB.SeedProduct(1, "Desk Lamp", "30")
	env.DB.SeedProduct(2, "Mug", "5")

	w := env.Do(request(http.MethodGet, "/v1/products", "", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]any](t, w)["products"], 2)

	w = env.Do(request(http.MethodGet, "/v1/products/search?q=lamp", "", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]any](t, w)["products"], 1)

	w = env.Do(request(http.MethodGet, "/v1/products/2", "", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(request(http.MethodGet, "/v1/products/99", "", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProductWrites(t *testing.T) {
	env := apitest.New(t)
	_, shopper := env.User(t, "ann@example.com", false)
	_, admin := env.User(t, "root@example.com", true)
	input := map[string]any{"name": "Blue Desk Lamp", "price": "$24.99", "featured": true}

	w := env.Do(request(http.MethodPost, "/v1/admin/products", shopper, input))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/login", decode[map[string]any](t, w)["redirect"])

	w = env.Do(request(http.MethodPost, "/v1/admin/products", admin, input))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Message string         `json:"message"`
		Product map[string]any `json:"product"`
	}](t, w).Product
	assert.Equal(t, "blue-desk-lamp", created["slug"])
	assert.Equal(t, 24.99, created["price"])

	path := fmt.Sprintf("/v1/admin/products/%d", int64(created["id"].(float64)))
	input["price"] = 19.5
	w = env.Do(request(http.MethodPut, path, admin, input))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Do(request(http.MethodGet, "/v1/admin/products/export", admin, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	w = env.Do(request(http.MethodDelete, path, admin, nil))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.Do(request(http.MethodDelete, path, admin, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadFile(t *testing.T) {
	env := apitest.New(t)
	_, admin := env.User(t, "root@example.com", true)

	upload := func(name string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/admin/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		return env.Do(req)
	}

	w := upload("lamp.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url := decode[map[string]string](t, w)["url"]
	assert.True(t, strings.HasPrefix(url, "http://test.local/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	w = upload("script.sh")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
