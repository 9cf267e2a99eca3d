package auth_service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type AuthService struct {
	Store            storage.Store
	MaxAdminAccounts int
	MaxJudgeAccounts int

	throttle *expirable.LRU[string, int]
}

// Initialize sets up the failed-login throttle. Must be called before
// the service handles requests.
func (a *AuthService) Initialize() {
	a.throttle = expirable.NewLRU[string, int](throttleCacheSize, nil, loginThrottleWindow)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the identity echoed to the client after a successful
// login. TeamID/TeamName are set for participants, Name for staff.
type SessionUser struct {
	TeamID   *int64 `json:"teamId,omitempty"`
	TeamName string `json:"teamName,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// seedPolicy is the bootstrap credential for a staff role. It is only
// honored while the role's account count is below capacity, so the fixed
// credentials cannot outlive a fully staffed deployment.
type seedPolicy struct {
	emailKeys []string
	password  string
	// displayName derives the synthetic identity's name from the email
	// key used to log in.
	displayName func(emailKey string) string
}

var seedPolicies = map[storage.AccountKind]seedPolicy{
	storage.KindAdmin: {
		emailKeys:   []string{"admin@adzap.com"},
		password:    "admin123",
		displayName: func(string) string { return "Default Admin" },
	},
	storage.KindJudge: {
		emailKeys:   []string{"judge1@adzap.com", "judge2@adzap.com"},
		password:    "judge123",
		displayName: func(emailKey string) string { return emailKey },
	},
}

const (
	throttleCacheSize = 1024
	maxFailedLogins   = 8
	sessionDuration   = 24 * time.Hour
)

var loginThrottleWindow = 10 * time.Minute
