package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/middleware"
)

// NormalizeEmail lowercases and trims an email into the case-insensitive
// lookup key every uniqueness rule is scoped to.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// custom function for translating validation error into user readable errors
func translateValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	default:
		return fmt.Sprintf("Validation failed for %s with rule %s", e.Field(), e.Tag())
	}
}

// ValidateInput validates the input struct using the package validator.
// If validation fails, it logs and returns the first user-friendly error
// message. Returns nil if input is valid.
func ValidateInput(inp any) error {
	if err := validate.Struct(inp); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			if len(validationErrors) > 0 {
				errorMessage := translateValidationError(validationErrors[0])
				log.Error(errorMessage)
				return fmt.Errorf("%w, %s", adzap_errors.ErrInvalidInput, errorMessage)
			}
		}
	}
	return nil
}

func GetClaimsFromContext(ctx context.Context) (middleware.SessionClaims, error) {
	claimsValue := ctx.Value(middleware.KeyCtxSessionClaims)
	claims, ok := claimsValue.(middleware.SessionClaims)
	if !ok {
		err := fmt.Errorf(
			"%w, unable to parse claims to middleware.SessionClaims, type of claims found is %T",
			adzap_errors.ErrInternal,
			claimsValue,
		)
		return middleware.SessionClaims{}, err
	}
	return claims, nil
}

// RequireRole authorizes the session in ctx against the allowed roles.
func RequireRole(ctx context.Context, roles ...string) (middleware.SessionClaims, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return middleware.SessionClaims{}, err
	}
	if !slices.Contains(roles, claims.Role) {
		log.WithFields(log.Fields{
			"email": claims.Email,
			"role":  claims.Role,
		}).Warn("rejected unauthorized action")
		return claims, adzap_errors.ErrUnAuthorized
	}
	return claims, nil
}
