package auth_service

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

// GeneratePasswordHash returns a bcrypt hash of the password. The raw
// secret is never persisted.
func GeneratePasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("cannot hash password, %v", err)
		return "", errors.Join(adzap_errors.ErrInternal, err)
	}
	return string(hash), nil
}

func VerifyPassword(hash string, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
