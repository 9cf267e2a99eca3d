package account_service

import "github.com/adzap-tech/adzap-backend/internal/storage"

const (
	MaxAdminAccounts = 6
	MaxJudgeAccounts = 2
)

type AccountService struct {
	Store storage.Store
	// capacities default to MaxAdminAccounts/MaxJudgeAccounts when zero
	MaxAdmins int
	MaxJudges int
}

func (a *AccountService) maxAdmins() int {
	if a.MaxAdmins > 0 {
		return a.MaxAdmins
	}
	return MaxAdminAccounts
}

func (a *AccountService) maxJudges() int {
	if a.MaxJudges > 0 {
		return a.MaxJudges
	}
	return MaxJudgeAccounts
}

type AccountRegistration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}
