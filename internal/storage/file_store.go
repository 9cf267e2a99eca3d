package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

// FileStore keeps the whole state in a single JSON document, the same
// layout the bootstrap read exposes. A store-wide mutex serializes every
// read-modify-write so capacity and duplicate checks are atomic.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w, cannot create data dir %s, %w", adzap_errors.ErrInternal, dataDir, err)
	}
	fs := &FileStore{path: filepath.Join(dataDir, "store.json")}
	if _, err := os.Stat(fs.path); errors.Is(err, os.ErrNotExist) {
		if err := fs.write(Snapshot{
			Teams:           []Team{},
			ContactMessages: []ContactMessage{},
			AdminAccounts:   []Account{},
			JudgeAccounts:   []Account{},
		}); err != nil {
			return nil, err
		}
		log.WithField("path", fs.path).Info("initialized empty file store")
	}
	return fs, nil
}

func (f *FileStore) Mode() string { return "file" }

func (f *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("%w, store file unreachable, %w", adzap_errors.ErrInternal, err)
	}
	return nil
}

func (f *FileStore) Close(ctx context.Context) error { return nil }

func (f *FileStore) read() (Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w, cannot read store file, %w", adzap_errors.ErrInternal, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w, corrupted store file, %w", adzap_errors.ErrInternal, err)
	}
	return snap, nil
}

// write replaces the store file atomically via a temp file and rename.
func (f *FileStore) write(snap Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w, cannot marshal store state, %w", adzap_errors.ErrInternal, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w, cannot write store file, %w", adzap_errors.ErrInternal, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%w, cannot replace store file, %w", adzap_errors.ErrInternal, err)
	}
	return nil
}

func (f *FileStore) Bootstrap(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileStore) InsertTeam(ctx context.Context, team Team, maxTeams int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return err
	}
	if len(snap.Teams) >= maxTeams {
		return adzap_errors.ErrCapacityFull
	}
	for _, existing := range snap.Teams {
		if existing.EmailKey == team.EmailKey {
			return adzap_errors.ErrDuplicateEmail
		}
	}
	snap.Teams = append(snap.Teams, team)
	return f.write(snap)
}

func (f *FileStore) FindTeamByEmailKey(ctx context.Context, emailKey string) (Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return Team{}, err
	}
	for _, team := range snap.Teams {
		if team.EmailKey == emailKey {
			return team, nil
		}
	}
	return Team{}, adzap_errors.ErrNotFound
}

func (f *FileStore) GetTeamByID(ctx context.Context, id int64) (Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return Team{}, err
	}
	for _, team := range snap.Teams {
		if team.ID == id {
			return team, nil
		}
	}
	return Team{}, adzap_errors.ErrNotFound
}

func (f *FileStore) ListTeams(ctx context.Context) ([]Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return nil, err
	}
	return snap.Teams, nil
}

func (f *FileStore) ReplaceTeams(ctx context.Context, teams []Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return err
	}
	snap.Teams = teams
	return f.write(snap)
}

func (f *FileStore) UpdateTeam(ctx context.Context, id int64, fn func(*Team) error) (Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return Team{}, err
	}
	for i := range snap.Teams {
		if snap.Teams[i].ID == id {
			if err := fn(&snap.Teams[i]); err != nil {
				return Team{}, err
			}
			if err := f.write(snap); err != nil {
				return Team{}, err
			}
			return snap.Teams[i], nil
		}
	}
	return Team{}, adzap_errors.ErrNotFound
}

func (f *FileStore) MutateTeams(ctx context.Context, fn func([]Team) []Team) ([]Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return nil, err
	}
	snap.Teams = fn(snap.Teams)
	if err := f.write(snap); err != nil {
		return nil, err
	}
	return snap.Teams, nil
}

func (f *FileStore) DeleteTeams(ctx context.Context, ids []int64) (int, error) {
	doomed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	deleted := 0
	_, err := f.MutateTeams(ctx, func(teams []Team) []Team {
		kept := teams[:0]
		for _, team := range teams {
			if doomed[team.ID] {
				deleted++
				continue
			}
			kept = append(kept, team)
		}
		return kept
	})
	return deleted, err
}

func (f *FileStore) accounts(snap *Snapshot, kind AccountKind) *[]Account {
	if kind == KindAdmin {
		return &snap.AdminAccounts
	}
	return &snap.JudgeAccounts
}

func (f *FileStore) CountAccounts(ctx context.Context, kind AccountKind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return 0, err
	}
	return len(*f.accounts(&snap, kind)), nil
}

func (f *FileStore) InsertAccount(ctx context.Context, kind AccountKind, account Account, maxAccounts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return err
	}
	accounts := f.accounts(&snap, kind)
	if len(*accounts) >= maxAccounts {
		return adzap_errors.ErrCapacityFull
	}
	for _, existing := range *accounts {
		if existing.EmailKey == account.EmailKey {
			return adzap_errors.ErrDuplicateEmail
		}
	}
	*accounts = append(*accounts, account)
	return f.write(snap)
}

func (f *FileStore) FindAccountByEmailKey(ctx context.Context, kind AccountKind, emailKey string) (Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return Account{}, err
	}
	for _, account := range *f.accounts(&snap, kind) {
		if account.EmailKey == emailKey {
			return account, nil
		}
	}
	return Account{}, adzap_errors.ErrNotFound
}

func (f *FileStore) InsertContactMessage(ctx context.Context, msg ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return err
	}
	// newest first
	snap.ContactMessages = append([]ContactMessage{msg}, snap.ContactMessages...)
	return f.write(snap)
}

func (f *FileStore) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return nil, err
	}
	return snap.ContactMessages, nil
}

func (f *FileStore) DeleteContactMessage(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.read()
	if err != nil {
		return err
	}
	for i, msg := range snap.ContactMessages {
		if msg.ID == id {
			snap.ContactMessages = append(snap.ContactMessages[:i], snap.ContactMessages[i+1:]...)
			return f.write(snap)
		}
	}
	return adzap_errors.ErrNotFound
}
