package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lumio_social/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func testWallet() model.ActorID {
	var id model.ActorID
	id[0] = 0x42
	return id
}

// echoWallet writes the wallet found in the context, or "anonymous".
var echoWallet = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	wallet, ok := GetWalletFromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(wallet.String()))
})

func TestAuthMiddleware(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{"wallet": testWallet().String(), "exp": time.Now().Add(time.Minute).Unix()}, testSecret)
	expired := signToken(t, jwt.MapClaims{"wallet": testWallet().String(), "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)
	wrongSecret := signToken(t, jwt.MapClaims{"wallet": testWallet().String()}, "other")
	noWallet := signToken(t, jwt.MapClaims{"user_id": 1}, testSecret)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer " + valid, http.StatusOK, testWallet().String()},
		{"missing", "", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, model.CodeTokenExpired},
		{"wrong secret", "Bearer " + wrongSecret, http.StatusUnauthorized, model.CodeTokenInvalid},
		{"no wallet claim", "Bearer " + noWallet, http.StatusUnauthorized, model.CodeTokenInvalid},
	}

	handler := AuthMiddleware(testSecret)(echoWallet)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{"wallet": testWallet().String()}, testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: valid})
	rec := httptest.NewRecorder()

	AuthMiddleware(testSecret)(echoWallet).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != testWallet().String() {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := OptionalAuthMiddleware(testSecret)(echoWallet)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != "anonymous" {
		t.Errorf("no token: body = %q, want anonymous", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("bad token: got %d %q, want anonymous pass-through", rec.Code, rec.Body.String())
	}

	valid := signToken(t, jwt.MapClaims{"wallet": testWallet().String()}, testSecret)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != testWallet().String() {
		t.Errorf("valid token: body = %q", rec.Body.String())
	}
}
