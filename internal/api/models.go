package api

import (
	"github.com/adzap-tech/adzap-backend/internal/service/account_service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/service/contact_service"
	"github.com/adzap-tech/adzap-backend/internal/service/sync_service"
	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type Api struct {
	Store                storage.Store
	AuthServiceConfig    *auth_service.AuthService
	TeamServiceConfig    *team_service.TeamService
	AccountServiceConfig *account_service.AccountService
	ContactServiceConfig *contact_service.ContactService
	SyncServiceConfig    *sync_service.SyncService
}
