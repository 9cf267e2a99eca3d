package auth_service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

// LoginParticipant verifies a team credential and returns the session
// identity, the sanitized team, and a signed session token.
func (a *AuthService) LoginParticipant(
	ctx context.Context,
	request LoginRequest,
) (SessionUser, storage.Team, string, time.Time, error) {
	emailKey := service.NormalizeEmail(request.Email)
	password := strings.TrimSpace(request.Password)
	if err := a.checkThrottle(emailKey); err != nil {
		return SessionUser{}, storage.Team{}, "", time.Time{}, err
	}

	team, err := a.Store.FindTeamByEmailKey(ctx, emailKey)
	if err != nil {
		if errors.Is(err, adzap_errors.ErrNotFound) {
			a.recordFailure(emailKey)
			return SessionUser{}, storage.Team{}, "", time.Time{}, adzap_errors.ErrInvalidUserCredentials
		}
		return SessionUser{}, storage.Team{}, "", time.Time{}, err
	}
	if !VerifyPassword(team.PasswordHash, password) {
		a.recordFailure(emailKey)
		return SessionUser{}, storage.Team{}, "", time.Time{}, adzap_errors.ErrInvalidUserCredentials
	}
	a.clearFailures(emailKey)

	teamID := team.ID
	user := SessionUser{
		TeamID:   &teamID,
		TeamName: team.TeamName,
		Email:    team.Email,
		Role:     middleware.RoleParticipant,
	}
	token, expiry, err := newSessionToken(middleware.SessionClaims{
		Name:   team.TeamName,
		Email:  team.Email,
		Role:   middleware.RoleParticipant,
		TeamID: &teamID,
	})
	if err != nil {
		return SessionUser{}, storage.Team{}, "", time.Time{}, err
	}

	log.WithFields(log.Fields{
		"team_id":   team.ID,
		"team_name": team.TeamName,
	}).Info("participant logged in")
	return user, team.Sanitized(), token, expiry, nil
}

func (a *AuthService) LoginAdmin(
	ctx context.Context,
	request LoginRequest,
) (SessionUser, string, time.Time, error) {
	return a.loginStaff(ctx, storage.KindAdmin, middleware.RoleAdmin, a.MaxAdminAccounts, request)
}

func (a *AuthService) LoginJudge(
	ctx context.Context,
	request LoginRequest,
) (SessionUser, string, time.Time, error) {
	return a.loginStaff(ctx, storage.KindJudge, middleware.RoleJudge, a.MaxJudgeAccounts, request)
}

// loginStaff matches a stored account first. When none matches, the
// role's seed credential is honored, but only while the account table is
// below capacity.
func (a *AuthService) loginStaff(
	ctx context.Context,
	kind storage.AccountKind,
	role string,
	maxAccounts int,
	request LoginRequest,
) (SessionUser, string, time.Time, error) {
	emailKey := service.NormalizeEmail(request.Email)
	password := strings.TrimSpace(request.Password)
	if err := a.checkThrottle(emailKey); err != nil {
		return SessionUser{}, "", time.Time{}, err
	}

	account, err := a.Store.FindAccountByEmailKey(ctx, kind, emailKey)
	if err == nil && VerifyPassword(account.PasswordHash, password) {
		a.clearFailures(emailKey)
		return a.issueStaffSession(account.Name, account.Email, role)
	}
	if err != nil && !errors.Is(err, adzap_errors.ErrNotFound) {
		return SessionUser{}, "", time.Time{}, err
	}

	allowed, err := a.seedCredentialMatches(ctx, kind, maxAccounts, emailKey, password)
	if err != nil {
		return SessionUser{}, "", time.Time{}, err
	}
	if allowed {
		a.clearFailures(emailKey)
		policy := seedPolicies[kind]
		log.WithFields(log.Fields{
			"email": emailKey,
			"role":  role,
		}).Warn("seed credential login")
		return a.issueStaffSession(policy.displayName(emailKey), emailKey, role)
	}

	a.recordFailure(emailKey)
	return SessionUser{}, "", time.Time{}, adzap_errors.ErrInvalidUserCredentials
}

// seedCredentialMatches is the bootstrap policy: the fixed credential is
// valid only while the role's count is below capacity. The password
// comparison is constant time.
func (a *AuthService) seedCredentialMatches(
	ctx context.Context,
	kind storage.AccountKind,
	maxAccounts int,
	emailKey string,
	password string,
) (bool, error) {
	policy, ok := seedPolicies[kind]
	if !ok {
		return false, fmt.Errorf("%w, no seed policy for account kind %s", adzap_errors.ErrInternal, kind)
	}
	if !slices.Contains(policy.emailKeys, emailKey) {
		return false, nil
	}
	count, err := a.Store.CountAccounts(ctx, kind)
	if err != nil {
		return false, err
	}
	allowDefault := count < maxAccounts
	if !allowDefault {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(policy.password), []byte(password)) == 1, nil
}

func (a *AuthService) issueStaffSession(
	name string,
	email string,
	role string,
) (SessionUser, string, time.Time, error) {
	user := SessionUser{Name: name, Email: email, Role: role}
	token, expiry, err := newSessionToken(middleware.SessionClaims{
		Name:  name,
		Email: email,
		Role:  role,
	})
	if err != nil {
		return SessionUser{}, "", time.Time{}, err
	}
	log.WithFields(log.Fields{
		"email": email,
		"role":  role,
	}).Info("logged in")
	return user, token, expiry, nil
}

func (a *AuthService) checkThrottle(emailKey string) error {
	if a.throttle == nil {
		return nil
	}
	fails, _ := a.throttle.Get(emailKey)
	if fails >= maxFailedLogins {
		log.WithField("email", emailKey).Warn("login throttled")
		return adzap_errors.ErrTooManyAttempts
	}
	return nil
}

func (a *AuthService) recordFailure(emailKey string) {
	if a.throttle == nil {
		return
	}
	fails, _ := a.throttle.Get(emailKey)
	a.throttle.Add(emailKey, fails+1)
}

func (a *AuthService) clearFailures(emailKey string) {
	if a.throttle == nil {
		return
	}
	a.throttle.Remove(emailKey)
}
