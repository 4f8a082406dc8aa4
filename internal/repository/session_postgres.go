package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lumio_social/internal/model"
)

// sessionRow mirrors the sessions table. Identities are stored as 0x-hex text.
type sessionRow struct {
	Account        string         `db:"account"`
	Key            string         `db:"session_key"`
	Expires        int64          `db:"expires"`
	AllowedActions pq.StringArray `db:"allowed_actions"`
}

func (r sessionRow) toModel() (model.Session, error) {
	account, err := model.ParseActorID(r.Account)
	if err != nil {
		return model.Session{}, fmt.Errorf("account column: %w", err)
	}
	key, err := model.ParseActorID(r.Key)
	if err != nil {
		return model.Session{}, fmt.Errorf("session_key column: %w", err)
	}
	if r.Expires < 0 {
		return model.Session{}, fmt.Errorf("negative expires %d", r.Expires)
	}

	actions := make([]model.Action, 0, len(r.AllowedActions))
	for _, name := range r.AllowedActions {
		a, err := model.ParseAction(name)
		if err != nil {
			return model.Session{}, fmt.Errorf("allowed_actions column: %w", err)
		}
		actions = append(actions, a)
	}

	return model.Session{
		Account:        account,
		Key:            key,
		Expires:        uint64(r.Expires),
		AllowedActions: actions,
	}, nil
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

// NewPostgresSessionRepository reads sessions from the sessions table.
func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

// SessionFor retrieves the session registered for account
func (r *postgresSessionRepository) SessionFor(ctx context.Context, account model.ActorID) (model.Session, bool, error) {
	query := `
		SELECT account, session_key, expires, allowed_actions
		FROM sessions
		WHERE account = $1
	`
	var row sessionRow
	err := r.db.GetContext(ctx, &row, query, account.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, false, nil
		}
		return model.Session{}, false, fmt.Errorf("failed to find session: %w", err)
	}

	s, err := row.toModel()
	if err != nil {
		return model.Session{}, false, fmt.Errorf("decode session %s: %w", account, err)
	}
	return s, true, nil
}

// Save upserts the session for s.Account
func (r *postgresSessionRepository) Save(ctx context.Context, s model.Session) error {
	names := make([]string, len(s.AllowedActions))
	for i, a := range s.AllowedActions {
		names[i] = a.String()
	}

	query := `
		INSERT INTO sessions (account, session_key, expires, allowed_actions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account) DO UPDATE
		SET session_key = EXCLUDED.session_key,
		    expires = EXCLUDED.expires,
		    allowed_actions = EXCLUDED.allowed_actions
	`
	_, err := r.db.ExecContext(ctx, query, s.Account.String(), s.Key.String(), int64(s.Expires), pq.Array(names))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
