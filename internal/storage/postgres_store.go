package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS teams (
	id BIGINT PRIMARY KEY,
	email_key TEXT NOT NULL,
	doc JSONB NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_teams_email_key ON teams (email_key);

CREATE TABLE IF NOT EXISTS accounts (
	kind TEXT NOT NULL,
	id BIGINT NOT NULL,
	email_key TEXT NOT NULL,
	doc JSONB NOT NULL,
	PRIMARY KEY (kind, id)
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_accounts_kind_email_key ON accounts (kind, email_key);

CREATE TABLE IF NOT EXISTS contact_messages (
	id BIGINT PRIMARY KEY,
	created_at TEXT NOT NULL,
	doc JSONB NOT NULL
);
`

// advisory lock keys guarding the counted inserts
const (
	lockKeyTeams    = 7001
	lockKeyAccounts = 7002
)

var errMsgs = map[string]map[string]string{
	adzap_errors.CodeUniqueConstraint: {
		"uq_teams_email_key":         "a team with that email is already registered",
		"uq_accounts_kind_email_key": "an account with that email already exists",
	},
}

// PostgresStore persists each record kind as a jsonb document. Capacity
// is a counted insert under an advisory transaction lock; email
// uniqueness is a real unique index, so the check-then-act race of the
// application-level version cannot occur here.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("%w, cannot create pg pool, %w", adzap_errors.ErrInternal, err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("%w, cannot ensure pg schema, %w", adzap_errors.ErrInternal, err)
	}
	log.Info("connected to postgres")
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Mode() string { return "postgres" }

func (p *PostgresStore) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w, postgres unreachable, %w", adzap_errors.ErrInternal, err)
	}
	return nil
}

func (p *PostgresStore) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) Bootstrap(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Teams:           []Team{},
		ContactMessages: []ContactMessage{},
		AdminAccounts:   []Account{},
		JudgeAccounts:   []Account{},
	}
	teams, err := p.ListTeams(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Teams = teams
	messages, err := p.ListContactMessages(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.ContactMessages = messages
	snap.AdminAccounts, err = p.listAccounts(ctx, KindAdmin)
	if err != nil {
		return Snapshot{}, err
	}
	snap.JudgeAccounts, err = p.listAccounts(ctx, KindJudge)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (p *PostgresStore) InsertTeam(ctx context.Context, team Team, maxTeams int) error {
	doc, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("%w, cannot marshal team, %w", adzap_errors.ErrInternal, err)
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyTeams); err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot take team insert lock")
		}
		var count int
		if err := tx.QueryRow(ctx, "SELECT count(*) FROM teams").Scan(&count); err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot count teams")
		}
		if count >= maxTeams {
			return adzap_errors.ErrCapacityFull
		}
		_, err := tx.Exec(ctx,
			"INSERT INTO teams (id, email_key, doc) VALUES ($1, $2, $3)",
			team.ID, team.EmailKey, doc,
		)
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot insert team")
		}
		return nil
	})
}

func (p *PostgresStore) FindTeamByEmailKey(ctx context.Context, emailKey string) (Team, error) {
	return p.scanTeam(p.pool.QueryRow(ctx,
		"SELECT doc FROM teams WHERE email_key = $1", emailKey,
	))
}

func (p *PostgresStore) GetTeamByID(ctx context.Context, id int64) (Team, error) {
	return p.scanTeam(p.pool.QueryRow(ctx,
		"SELECT doc FROM teams WHERE id = $1", id,
	))
}

func (p *PostgresStore) scanTeam(row pgx.Row) (Team, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, adzap_errors.ErrNotFound
		}
		return Team{}, adzap_errors.HandleDBErrors(err, errMsgs, "cannot fetch team")
	}
	var team Team
	if err := json.Unmarshal(doc, &team); err != nil {
		return Team{}, fmt.Errorf("%w, corrupted team document, %w", adzap_errors.ErrInternal, err)
	}
	return team, nil
}

func (p *PostgresStore) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := p.pool.Query(ctx, "SELECT doc FROM teams ORDER BY id")
	if err != nil {
		return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot list teams")
	}
	defer rows.Close()
	teams := []Team{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot scan team")
		}
		var team Team
		if err := json.Unmarshal(doc, &team); err != nil {
			return nil, fmt.Errorf("%w, corrupted team document, %w", adzap_errors.ErrInternal, err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (p *PostgresStore) ReplaceTeams(ctx context.Context, teams []Team) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return replaceTeamsTx(ctx, tx, teams)
	})
}

func replaceTeamsTx(ctx context.Context, tx pgx.Tx, teams []Team) error {
	if _, err := tx.Exec(ctx, "DELETE FROM teams"); err != nil {
		return adzap_errors.HandleDBErrors(err, errMsgs, "cannot clear teams")
	}
	for _, team := range teams {
		doc, err := json.Marshal(team)
		if err != nil {
			return fmt.Errorf("%w, cannot marshal team, %w", adzap_errors.ErrInternal, err)
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO teams (id, email_key, doc) VALUES ($1, $2, $3)",
			team.ID, team.EmailKey, doc,
		)
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot insert replacement team")
		}
	}
	return nil
}

func (p *PostgresStore) UpdateTeam(ctx context.Context, id int64, fn func(*Team) error) (Team, error) {
	var updated Team
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx,
			"SELECT doc FROM teams WHERE id = $1 FOR UPDATE", id,
		).Scan(&doc)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return adzap_errors.ErrNotFound
			}
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot fetch team for update")
		}
		var team Team
		if err := json.Unmarshal(doc, &team); err != nil {
			return fmt.Errorf("%w, corrupted team document, %w", adzap_errors.ErrInternal, err)
		}
		if err := fn(&team); err != nil {
			return err
		}
		next, err := json.Marshal(team)
		if err != nil {
			return fmt.Errorf("%w, cannot marshal team, %w", adzap_errors.ErrInternal, err)
		}
		_, err = tx.Exec(ctx,
			"UPDATE teams SET email_key = $2, doc = $3 WHERE id = $1",
			id, team.EmailKey, next,
		)
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot update team")
		}
		updated = team
		return nil
	})
	return updated, err
}

func (p *PostgresStore) MutateTeams(ctx context.Context, fn func([]Team) []Team) ([]Team, error) {
	var next []Team
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyTeams); err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot take team mutate lock")
		}
		rows, err := tx.Query(ctx, "SELECT doc FROM teams ORDER BY id")
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot list teams")
		}
		teams := []Team{}
		for rows.Next() {
			var doc []byte
			if err := rows.Scan(&doc); err != nil {
				rows.Close()
				return adzap_errors.HandleDBErrors(err, errMsgs, "cannot scan team")
			}
			var team Team
			if err := json.Unmarshal(doc, &team); err != nil {
				rows.Close()
				return fmt.Errorf("%w, corrupted team document, %w", adzap_errors.ErrInternal, err)
			}
			teams = append(teams, team)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot iterate teams")
		}
		next = fn(teams)
		return replaceTeamsTx(ctx, tx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (p *PostgresStore) DeleteTeams(ctx context.Context, ids []int64) (int, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM teams WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, adzap_errors.HandleDBErrors(err, errMsgs, "cannot delete teams")
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) CountAccounts(ctx context.Context, kind AccountKind) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		"SELECT count(*) FROM accounts WHERE kind = $1", string(kind),
	).Scan(&count)
	if err != nil {
		return 0, adzap_errors.HandleDBErrors(err, errMsgs, "cannot count accounts")
	}
	return count, nil
}

func (p *PostgresStore) InsertAccount(ctx context.Context, kind AccountKind, account Account, maxAccounts int) error {
	doc, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("%w, cannot marshal account, %w", adzap_errors.ErrInternal, err)
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyAccounts); err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot take account insert lock")
		}
		var count int
		err := tx.QueryRow(ctx,
			"SELECT count(*) FROM accounts WHERE kind = $1", string(kind),
		).Scan(&count)
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot count accounts")
		}
		if count >= maxAccounts {
			return adzap_errors.ErrCapacityFull
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO accounts (kind, id, email_key, doc) VALUES ($1, $2, $3, $4)",
			string(kind), account.ID, account.EmailKey, doc,
		)
		if err != nil {
			return adzap_errors.HandleDBErrors(err, errMsgs, "cannot insert account")
		}
		return nil
	})
}

func (p *PostgresStore) FindAccountByEmailKey(ctx context.Context, kind AccountKind, emailKey string) (Account, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		"SELECT doc FROM accounts WHERE kind = $1 AND email_key = $2",
		string(kind), emailKey,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, adzap_errors.ErrNotFound
		}
		return Account{}, adzap_errors.HandleDBErrors(err, errMsgs, "cannot fetch account")
	}
	var account Account
	if err := json.Unmarshal(doc, &account); err != nil {
		return Account{}, fmt.Errorf("%w, corrupted account document, %w", adzap_errors.ErrInternal, err)
	}
	return account, nil
}

func (p *PostgresStore) listAccounts(ctx context.Context, kind AccountKind) ([]Account, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT doc FROM accounts WHERE kind = $1 ORDER BY id", string(kind),
	)
	if err != nil {
		return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot list accounts")
	}
	defer rows.Close()
	accounts := []Account{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot scan account")
		}
		var account Account
		if err := json.Unmarshal(doc, &account); err != nil {
			return nil, fmt.Errorf("%w, corrupted account document, %w", adzap_errors.ErrInternal, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (p *PostgresStore) InsertContactMessage(ctx context.Context, msg ContactMessage) error {
	doc, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w, cannot marshal contact message, %w", adzap_errors.ErrInternal, err)
	}
	_, err = p.pool.Exec(ctx,
		"INSERT INTO contact_messages (id, created_at, doc) VALUES ($1, $2, $3)",
		msg.ID, msg.CreatedAt, doc,
	)
	if err != nil {
		return adzap_errors.HandleDBErrors(err, errMsgs, "cannot insert contact message")
	}
	return nil
}

func (p *PostgresStore) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT doc FROM contact_messages ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot list contact messages")
	}
	defer rows.Close()
	messages := []ContactMessage{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, adzap_errors.HandleDBErrors(err, errMsgs, "cannot scan contact message")
		}
		var msg ContactMessage
		if err := json.Unmarshal(doc, &msg); err != nil {
			return nil, fmt.Errorf("%w, corrupted contact message, %w", adzap_errors.ErrInternal, err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (p *PostgresStore) DeleteContactMessage(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM contact_messages WHERE id = $1", id)
	if err != nil {
		return adzap_errors.HandleDBErrors(err, errMsgs, "cannot delete contact message")
	}
	if tag.RowsAffected() == 0 {
		return adzap_errors.ErrNotFound
	}
	return nil
}
