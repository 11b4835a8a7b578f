package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aayan-01/CLOT/internal/application"
	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
)

// SessionStore persists sessions in MySQL. The table is used as a
// key-value document store with a TTL column; analysis and conversation
// travel as JSON text.
type SessionStore struct {
	db    *sql.DB
	ttl   time.Duration
	clock application.Clock
}

func NewSessionStore(db *sql.DB, ttl time.Duration, clock application.Clock) *SessionStore {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &SessionStore{db: db, ttl: ttl, clock: clock}
}

// EnsureSchema creates the sessions table when missing.
func (r *SessionStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_sessions (
  id           CHAR(36) PRIMARY KEY,
  image_refs   TEXT NOT NULL,
  analysis     MEDIUMTEXT NOT NULL,
  conversation MEDIUMTEXT NOT NULL,
  created_at   DATETIME(3) NOT NULL,
  expires_at   DATETIME(3) NOT NULL,
  KEY idx_sessions_expires_at (expires_at)
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *SessionStore) Create(ctx context.Context, imageRefs []string, result analysis.Result) (*session.Session, error) {
	now := r.clock.Now().UTC()
	sess := &session.Session{
		ID:           uuid.NewString(),
		ImageRefs:    imageRefs,
		Analysis:     result,
		Conversation: []session.Turn{},
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.ttl),
	}

	refs, err := json.Marshal(sess.ImageRefs)
	if err != nil {
		return nil, fmt.Errorf("marshal image refs: %w", err)
	}
	body, err := json.Marshal(sess.Analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	conv, err := json.Marshal(sess.Conversation)
	if err != nil {
		return nil, fmt.Errorf("marshal conversation: %w", err)
	}

	const q = `
INSERT INTO analysis_sessions (id, image_refs, analysis, conversation, created_at, expires_at)
VALUES (?,?,?,?,?,?);`
	if _, err := r.db.ExecContext(ctx, q, sess.ID, refs, body, conv, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return sess, nil
}

func (r *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	const q = `
SELECT id, image_refs, analysis, conversation, created_at, expires_at
FROM analysis_sessions
WHERE id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, id)

	var (
		sess             session.Session
		refs, body, conv []byte
	)
	if err := row.Scan(&sess.ID, &refs, &body, &conv, &sess.CreatedAt, &sess.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	if sess.Expired(r.clock.Now().UTC()) {
		_ = r.Delete(ctx, id)
		return nil, session.ErrNotFound
	}
	if err := json.Unmarshal(refs, &sess.ImageRefs); err != nil {
		return nil, fmt.Errorf("unmarshal image refs: %w", err)
	}
	if err := json.Unmarshal(body, &sess.Analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	if err := json.Unmarshal(conv, &sess.Conversation); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return &sess, nil
}

func (r *SessionStore) Update(ctx context.Context, id string, conversation []session.Turn) error {
	conv, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	now := r.clock.Now().UTC()

	const q = `
UPDATE analysis_sessions
SET conversation=?, expires_at=?
WHERE id=? AND expires_at >= ?;`
	res, err := r.db.ExecContext(ctx, q, conv, now.Add(r.ttl), id, now)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *SessionStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM analysis_sessions WHERE id=?;`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *SessionStore) Sweep(ctx context.Context) (int, error) {
	const q = `DELETE FROM analysis_sessions WHERE expires_at < ?;`
	res, err := r.db.ExecContext(ctx, q, r.clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
