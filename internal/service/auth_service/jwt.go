package auth_service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/middleware"
)

func newSessionToken(claims middleware.SessionClaims) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(sessionDuration)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.JwtSecret())
	if err != nil {
		log.Errorf("cannot sign session token, %v", err)
		return "", time.Time{}, errors.Join(adzap_errors.ErrInternal, err)
	}
	return signed, expiry, nil
}
