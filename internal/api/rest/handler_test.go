package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// subjectValidator accepts any bearer token and uses it as the subject
type subjectValidator struct{}

func (subjectValidator) Validate(token string) (*auth.Claims, error) {
	if token == "expired" {
		return nil, domain.ErrTokenExpired
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: token}}, nil
}

// fakePrices records the arguments of the price endpoints
type fakePrices struct {
	executor.PriceExecutor
	from, to *domain.Date
	history  domain.Date
}

func (f *fakePrices) GetPrices(_ context.Context, _, _ uuid.UUID, from, to *domain.Date) (*dto.PricesResponse, error) {
	f.from, f.to = from, to
	return &dto.PricesResponse{Items: []dto.PriceDayResponse{}}, nil
}

func (f *fakePrices) GetPriceHistory(_ context.Context, _, _ uuid.UUID, date domain.Date, _ int) (*dto.PriceHistoryResponse, error) {
	f.history = date
	return &dto.PriceHistoryResponse{Date: date}, nil
}

// fakeBilling records the webhook payload
type fakeBilling struct {
	executor.BillingExecutor
	payload   []byte
	signature string
	err       error
}

func (f *fakeBilling) HandleStripeWebhook(_ context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	f.payload, f.signature = payload, signature
	if f.err != nil {
		return nil, f.err
	}
	return &dto.WebhookResponse{Received: true}, nil
}

// testExecutor composes the narrow executors a test needs
type testExecutor struct {
	*mocks.MockAuthExecutor
	executor.PropertyExecutor
	executor.CompetitorExecutor
	executor.SettingsExecutor
	executor.PriceExecutor
	executor.NotificationExecutor
	executor.BillingExecutor
}

type testServer struct {
	router  *gin.Engine
	auth    *mocks.MockAuthExecutor
	prices  *fakePrices
	billing *fakeBilling
}

func newTestServer(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)
	authMock := mocks.NewMockAuthExecutor(ctrl)
	prices := &fakePrices{}
	billing := &fakeBilling{}

	exec := &testExecutor{
		MockAuthExecutor: authMock,
		PriceExecutor:    prices,
		BillingExecutor:  billing,
	}
	h := NewHandler(false, exec, CookieConfig{RefreshTTL: time.Hour})

	router := gin.New()
	SetupRoutes(router, h, subjectValidator{}, "csrftoken")
	return &testServer{router: router, auth: authMock, prices: prices, billing: billing}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	require.NotEmpty(t, apiErr.Errors)
	return &apiErr
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func testSession(profileID uuid.UUID) *executor.Session {
	return &executor.Session{
		Login: dto.LoginResponse{
			Success:     true,
			AccessToken: "access",
			ExpiresIn:   900,
			Profile:     &dto.ProfileResponse{ID: profileID, Email: "ana@example.com"},
		},
		RefreshToken:     "refresh-secret",
		RefreshExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	profileID := uuid.New()

	s.auth.EXPECT().
		Login(gomock.Any(), dto.LoginRequest{Email: "ana@example.com", Password: "s3cret-password"}).
		Return(testSession(profileID), nil)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ana@example.com", Password: "s3cret-password"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "refresh-secret")

	var body dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "access", body.AccessToken)
	assert.Equal(t, int64(900), body.ExpiresIn)
	assert.Equal(t, profileID, body.Profile.ID)

	cookie := findCookie(w, "refresh_token")
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-secret", cookie.Value)
	assert.Equal(t, "/api/v1/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Greater(t, cookie.MaxAge, 0)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, domain.ErrInvalidCredentials)

	w := s.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ana@example.com", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decodeError(t, w).Code())
	assert.Nil(t, findCookie(w, "refresh_token"))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "bad email", body: `{"email":"not-an-email","password":"s3cret-password"}`, field: "email"},
		{name: "short password", body: `{"email":"ana@example.com","password":"short"}`, field: "password"},
		{name: "missing email", body: `{"password":"s3cret-password"}`, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := s.do(req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			apiErr := decodeError(t, w)
			assert.Equal(t, apierrors.ErrCodeValidation, apiErr.Code())
			assert.Equal(t, tt.field, apiErr.Errors[0].Field)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeValidation, decodeError(t, w).Code())
}

func TestRefresh(t *testing.T) {
	t.Run("missing csrf header", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "csrf"})

		w := s.do(req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apierrors.ErrCodeCSRFFailed, decodeError(t, w).Code())
	})

	t.Run("missing refresh cookie", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "csrf"})
		req.Header.Set(constants.CSRF_HEADER, "csrf")

		w := s.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rotates cookie", func(t *testing.T) {
		s := newTestServer(t)
		s.auth.EXPECT().Refresh(gomock.Any(), "old").Return(testSession(uuid.New()), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "csrf"})
		req.Header.Set(constants.CSRF_HEADER, "csrf")

		w := s.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		cookie := findCookie(w, "refresh_token")
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh-secret", cookie.Value)
	})

	t.Run("revoked token clears cookie", func(t *testing.T) {
		s := newTestServer(t)
		s.auth.EXPECT().Refresh(gomock.Any(), "old").Return(nil, domain.ErrInvalidRefreshToken)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "csrf"})
		req.Header.Set(constants.CSRF_HEADER, "csrf")

		w := s.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		cookie := findCookie(w, "refresh_token")
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	})
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.auth.EXPECT().Logout(gomock.Any(), "old").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old"})
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "csrf"})
	req.Header.Set(constants.CSRF_HEADER, "csrf")

	w := s.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, "refresh_token")
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
}

func TestGetCSRFToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.CSRFResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	cookie := findCookie(w, "csrftoken")
	require.NotNil(t, cookie)
	assert.Equal(t, body.CSRFToken, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	profileID := uuid.New()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = s.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeTokenExpired, decodeError(t, w).Code())

	s.auth.EXPECT().Me(gomock.Any(), profileID).Return(&dto.ProfileResponse{ID: profileID, IsOnboarding: true}, nil)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+profileID.String())
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, profileID, profile.ID)
	assert.True(t, profile.IsOnboarding)
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	return req
}

func TestGetPrices_Query(t *testing.T) {
	propertyID := uuid.New()
	base := "/api/v1/properties/" + propertyID.String() + "/prices"

	t.Run("dates are parsed", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(httptest.NewRequest(http.MethodGet, base+"?from=2025-06-01&to=2025-06-30", nil)))
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, s.prices.from)
		require.NotNil(t, s.prices.to)
		assert.Equal(t, "2025-06-01", s.prices.from.String())
		assert.Equal(t, "2025-06-30", s.prices.to.String())
	})

	t.Run("no range", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(httptest.NewRequest(http.MethodGet, base, nil)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, s.prices.from)
		assert.Nil(t, s.prices.to)
	})

	t.Run("bad date", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(httptest.NewRequest(http.MethodGet, base+"?from=01-06-2025", nil)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decodeError(t, w)
		assert.Equal(t, apierrors.ErrCodeValidation, apiErr.Code())
		assert.Equal(t, "from", apiErr.Errors[0].Field)
	})

	t.Run("malformed property id", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(httptest.NewRequest(http.MethodGet, "/api/v1/properties/not-a-uuid/prices", nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.ErrCodePropertyNotFound, decodeError(t, w).Code())
	})
}

func TestGetPriceHistory_DateParam(t *testing.T) {
	propertyID := uuid.New()
	s := newTestServer(t)

	w := s.do(authed(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String()+"/prices/2025-06-14/history", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-06-14", s.prices.history.String())

	w = s.do(authed(httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+propertyID.String()+"/prices/tomorrow/history", nil)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook(t *testing.T) {
	s := newTestServer(t)
	payload := `{"id":"evt_1","type":"checkout.session.completed"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/stripe/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, string(s.billing.payload))
	assert.Equal(t, "t=1,v1=abc", s.billing.signature)

	s.billing.err = domain.ErrInvalidSignature
	w = s.do(httptest.NewRequest(http.MethodPost, "/api/v1/billing/stripe/webhook", strings.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidSignature, decodeError(t, w).Code())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
