package storage

import (
	"context"
	"sync"
	"time"
)

// Store is the persistence port. Every adapter offers the same contract:
// capacity and duplicate-email rules are enforced inside the insert calls
// so the check and the write cannot be interleaved by another request.
type Store interface {
	Mode() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	Bootstrap(ctx context.Context) (Snapshot, error)

	InsertTeam(ctx context.Context, team Team, maxTeams int) error
	FindTeamByEmailKey(ctx context.Context, emailKey string) (Team, error)
	GetTeamByID(ctx context.Context, id int64) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	// ReplaceTeams swaps the whole collection, last write wins.
	ReplaceTeams(ctx context.Context, teams []Team) error
	// UpdateTeam applies fn to the stored team under the adapter's write
	// path and persists the result.
	UpdateTeam(ctx context.Context, id int64, fn func(*Team) error) (Team, error)
	// MutateTeams applies fn to the whole collection and persists what it
	// returns. Used by the round-selection and bulk-clear operations.
	MutateTeams(ctx context.Context, fn func([]Team) []Team) ([]Team, error)
	DeleteTeams(ctx context.Context, ids []int64) (int, error)

	CountAccounts(ctx context.Context, kind AccountKind) (int, error)
	InsertAccount(ctx context.Context, kind AccountKind, account Account, maxAccounts int) error
	FindAccountByEmailKey(ctx context.Context, kind AccountKind, emailKey string) (Account, error)

	InsertContactMessage(ctx context.Context, msg ContactMessage) error
	ListContactMessages(ctx context.Context) ([]ContactMessage, error)
	DeleteContactMessage(ctx context.Context, id int64) error
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NextID returns a strictly increasing millisecond-based id. The guard
// keeps concurrent registrations from colliding, unlike the old
// time-plus-jitter scheme.
func NextID() int64 {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}
