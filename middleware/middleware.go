package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

/*
	context key types are used to avoid conflicts when sharing data via contexts
	visit https://vld.bg/articles/go-context-type/ for more info
*/
type contextKey string

const (
	KeyJwtSessionCookieName            = "adzap_session"
	KeyCtxSessionClaims     contextKey = "SessionClaims"
)

const (
	RoleAdmin       = "admin"
	RoleJudge       = "judge"
	RoleParticipant = "participant"
)

// SessionClaims is the identity carried by the jwt session cookie.
// TeamID is set only for participant sessions.
type SessionClaims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	TeamID *int64 `json:"team_id,omitempty"`
	jwt.RegisteredClaims
}

func JwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Warn("JWT_SECRET not found in environment. using insecure development secret")
		secret = "adzap-dev-secret"
	}
	return []byte(secret)
}

// JWTMiddleware authenticates the session cookie and stashes the claims
// in the request context for the services to authorize against.
func JWTMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(KeyJwtSessionCookieName)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		var claims SessionClaims
		token, err := jwt.ParseWithClaims(
			cookie.Value,
			&claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return JwtSecret(), nil
			},
		)
		if err != nil || !token.Valid {
			log.Warnf("rejected session token, %v", err)
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), KeyCtxSessionClaims, claims)
		next(w, r.WithContext(ctx))
	}
}
