package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/medusa"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func TestGetCustomer(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		handler := NewCustomerHandler(&MockCustomers{}, &MockAuth{}, logger.Nop(), 5*time.Second)
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, httptest.NewRequest(http.MethodGet, "/api/customer", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Nil(t, body["customer"])
	})

	t.Run("backend error", func(t *testing.T) {
		handler := NewCustomerHandler(&MockCustomers{Err: errors.New("boom")}, &MockAuth{}, logger.Nop(), 5*time.Second)
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, httptest.NewRequest(http.MethodGet, "/api/customer", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Failed to retrieve customer", resp.Error)
	})

	t.Run("logged in", func(t *testing.T) {
		customers := &MockCustomers{Customer: &domain.Customer{ID: "cus_1", Email: "buyer@example.com"}}
		handler := NewCustomerHandler(customers, &MockAuth{}, logger.Nop(), 5*time.Second)
		rec := httptest.NewRecorder()

		handler.GetCustomer(rec, httptest.NewRequest(http.MethodGet, "/api/customer", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Customer domain.Customer `json:"customer"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "cus_1", body.Customer.ID)
	})
}

func TestLogin_SetsAuthCookie(t *testing.T) {
	handler := NewCustomerHandler(&MockCustomers{}, &MockAuth{Token: "jwt-abc"}, logger.Nop(), 5*time.Second)

	body, _ := json.Marshal(LoginRequestDTO{Email: "buyer@example.com", Password: "secret"})
	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	c := cookieFrom(rec, session.CookieAuthToken)
	require.NotNil(t, c)
	assert.Equal(t, "jwt-abc", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestLogin_Validation(t *testing.T) {
	handler := NewCustomerHandler(&MockCustomers{}, &MockAuth{Token: "jwt"}, logger.Nop(), 5*time.Second)

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{"))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		body, _ := json.Marshal(LoginRequestDTO{Email: "buyer@example.com"})
		rec := httptest.NewRecorder()
		handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, cookieFrom(rec, session.CookieAuthToken))
	})
}

func TestLogin_WrongCredentials(t *testing.T) {
	auth := &MockAuth{Err: &medusa.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}}
	handler := NewCustomerHandler(&MockCustomers{}, auth, logger.Nop(), 5*time.Second)

	body, _ := json.Marshal(LoginRequestDTO{Email: "buyer@example.com", Password: "wrong"})
	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unauthenticated", resp.Code)
}

func TestLogout_ClearsCookies(t *testing.T) {
	handler := NewCustomerHandler(&MockCustomers{}, &MockAuth{}, logger.Nop(), 5*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieAuthToken, Value: "jwt"})
	req.AddCookie(&http.Cookie{Name: session.CookieCustomerID, Value: "cus_1"})
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{session.CookieAuthToken, session.CookieCustomerID} {
		c := cookieFrom(rec, name)
		require.NotNil(t, c, name)
		assert.True(t, c.MaxAge < 0, name)
	}
}
