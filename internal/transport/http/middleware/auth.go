package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// WalletKey is the context key for the authenticated caller's wallet
	WalletKey contextKey = "wallet"
)

var errInvalidClaims = errors.New("invalid token claims")

// tokenFromRequest checks the Authorization header first, then the access_token cookie.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// parseWallet validates the token and returns its wallet claim.
func parseWallet(tokenString, jwtSecret string) (model.ActorID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return model.ActorID{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.ActorID{}, errInvalidClaims
	}
	raw, ok := claims["wallet"].(string)
	if !ok {
		return model.ActorID{}, errInvalidClaims
	}
	wallet, err := model.ParseActorID(raw)
	if err != nil {
		return model.ActorID{}, errInvalidClaims
	}
	return wallet, nil
}

// AuthMiddleware rejects requests without a valid access token and puts the
// caller's wallet in the request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			wallet, err := parseWallet(tokenString, jwtSecret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), WalletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the wallet when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			wallet, err := parseWallet(tokenString, jwtSecret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), WalletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWalletFromContext extracts the caller's wallet from the request context
func GetWalletFromContext(ctx context.Context) (model.ActorID, bool) {
	wallet, ok := ctx.Value(WalletKey).(model.ActorID)
	return wallet, ok
}
