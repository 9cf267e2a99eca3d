package sync_service

import (
	"context"

	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type SyncService struct {
	Store storage.Store
}

// Bootstrap is the single bulk read the client hydrates from. Every
// record is sanitized before leaving the service, the store's copy is
// authoritative over whatever the client cached.
func (s *SyncService) Bootstrap(ctx context.Context) (storage.Snapshot, error) {
	snap, err := s.Store.Bootstrap(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	clean := storage.Snapshot{
		Teams:           make([]storage.Team, len(snap.Teams)),
		ContactMessages: snap.ContactMessages,
		AdminAccounts:   make([]storage.Account, len(snap.AdminAccounts)),
		JudgeAccounts:   make([]storage.Account, len(snap.JudgeAccounts)),
	}
	if clean.ContactMessages == nil {
		clean.ContactMessages = []storage.ContactMessage{}
	}
	for i, team := range snap.Teams {
		clean.Teams[i] = team.Sanitized()
	}
	for i, account := range snap.AdminAccounts {
		clean.AdminAccounts[i] = account.Sanitized()
	}
	for i, account := range snap.JudgeAccounts {
		clean.JudgeAccounts[i] = account.Sanitized()
	}
	return clean, nil
}
