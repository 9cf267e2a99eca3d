package account_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

func (a *AccountService) RegisterAdmin(
	ctx context.Context,
	registration AccountRegistration,
) (storage.Account, error) {
	return a.register(ctx, storage.KindAdmin, a.maxAdmins(), registration)
}

func (a *AccountService) RegisterJudge(
	ctx context.Context,
	registration AccountRegistration,
) (storage.Account, error) {
	return a.register(ctx, storage.KindJudge, a.maxJudges(), registration)
}

// register creates a staff account. Duplicate emails are scoped to the
// account kind, an email may simultaneously be a team, admin and judge
// identity.
func (a *AccountService) register(
	ctx context.Context,
	kind storage.AccountKind,
	maxAccounts int,
	registration AccountRegistration,
) (storage.Account, error) {
	registration.Name = strings.TrimSpace(registration.Name)
	registration.Email = strings.TrimSpace(registration.Email)
	registration.Password = strings.TrimSpace(registration.Password)

	if err := service.ValidateInput(registration); err != nil {
		return storage.Account{}, err
	}

	passwordHash, err := auth_service.GeneratePasswordHash(registration.Password)
	if err != nil {
		return storage.Account{}, err
	}

	account := storage.Account{
		ID:           storage.NextID(),
		Name:         registration.Name,
		Email:        registration.Email,
		EmailKey:     service.NormalizeEmail(registration.Email),
		PasswordHash: passwordHash,
		CreatedAt:    storage.NowISO(),
	}

	if err := a.Store.InsertAccount(ctx, kind, account, maxAccounts); err != nil {
		if errors.Is(err, adzap_errors.ErrCapacityFull) {
			return storage.Account{}, fmt.Errorf(
				"%w, only %d %s accounts can be registered",
				adzap_errors.ErrCapacityFull, maxAccounts, kind,
			)
		}
		if errors.Is(err, adzap_errors.ErrDuplicateEmail) {
			return storage.Account{}, fmt.Errorf(
				"%w, %s with this email already exists",
				adzap_errors.ErrDuplicateEmail, kind,
			)
		}
		return storage.Account{}, err
	}

	log.WithFields(log.Fields{
		"account_id": account.ID,
		"kind":       kind,
	}).Info("registered account")
	return account.Sanitized(), nil
}
