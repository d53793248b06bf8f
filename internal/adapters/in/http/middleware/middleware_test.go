package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
)

type stubVerifier struct{ uids map[string]string }

func (s stubVerifier) VerifyIDToken(_ context.Context, tok string) (*fbauth.Token, error) {
	uid, ok := s.uids[tok]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &fbauth.Token{UID: uid}, nil
}

type stubUsers struct{ byID map[string]userdom.User }

func (s stubUsers) GetByID(_ context.Context, id string) (userdom.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (s stubUsers) GetByEmail(context.Context, string) (userdom.User, error) {
	return userdom.User{}, userdom.ErrNotFound
}

func (s stubUsers) List(context.Context, userdom.Filter) ([]userdom.User, error) { return nil, nil }

func (s stubUsers) Create(_ context.Context, u userdom.User) (userdom.User, error) { return u, nil }

func (s stubUsers) Save(_ context.Context, u userdom.User) (userdom.User, error) { return u, nil }

func newGate() *AuthMiddleware {
	return NewAuthMiddleware(
		stubVerifier{uids: map[string]string{"good": "u1", "ghost": "nobody", "off": "u2", "adm": "a1"}},
		stubUsers{byID: map[string]userdom.User{
			"u1": {ID: "u1", Email: "u1@example.com", Role: userdom.RoleCustomer, IsActive: true},
			"u2": {ID: "u2", Email: "u2@example.com", Role: userdom.RoleCustomer, IsActive: false},
			"a1": {ID: "a1", Email: "a1@example.com", Role: userdom.RoleAdmin, IsActive: true},
		}},
	)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthGate_Responses(t *testing.T) {
	var seen usecase.Actor
	h := newGate().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = usecase.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Access token required"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Access token required"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
		{"unknown user", "Bearer ghost", http.StatusNotFound, "User not found in database"},
		{"deactivated", "Bearer off", http.StatusForbidden, "Account is deactivated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errorBody(t, rec))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, userdom.RoleCustomer, seen.Role)
}

func TestOptionalAuth_FallsThroughAnonymously(t *testing.T) {
	var hasActor bool
	h := newGate().Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasActor = usecase.ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, hasActor)

	req.Header.Set("Authorization", "Bearer adm")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, hasActor)
}

func TestRequireRole(t *testing.T) {
	gate := newGate()
	h := gate.Handler(RequireRole(userdom.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions", errorBody(t, rec))

	req.Header.Set("Authorization", "Bearer adm")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(time.Minute, 3)
	rl.now = func() time.Time { return now }

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"), "limits are per IP")

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"), "bucket refills over the window")
}

func TestCORS_AllowList(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(false)(noop).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(true)(noop).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRecover_WritesJSON500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec))
}

func TestRequestID_KeepsOrMints(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, got, 36)
}

func TestOptionalAuth_KeepsRejectionReason(t *testing.T) {
	var status int
	var msg string
	var ok bool
	h := newGate().Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, msg, ok = AuthRejection(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer off")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Account is deactivated", msg)
}
