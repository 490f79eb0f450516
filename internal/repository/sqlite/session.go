package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateClientSession records a new API client session.
func (r *SQLiteRepo) CreateClientSession(ctx context.Context, sid string) error {
	t := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO client_sessions (sid, created, last_seen) VALUES (?, ?, ?)`, sid, t, t)
	return err
}

// ClientSessionExists reports whether sid was issued by this server.
func (r *SQLiteRepo) ClientSessionExists(ctx context.Context, sid string) (bool, error) {
	row := r.conn.QueryRow(ctx, `SELECT 1 FROM client_sessions WHERE sid = ?`, sid)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *SQLiteRepo) TouchClientSession(ctx context.Context, sid string) error {
	_, err := r.conn.Exec(ctx, `UPDATE client_sessions SET last_seen = ? WHERE sid = ?`, now(), sid)
	return err
}

// IdleClientSessions lists the sessions not seen since before.
func (r *SQLiteRepo) IdleClientSessions(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT sid FROM client_sessions WHERE last_seen < ?`, before.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query idle sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("scan idle session: %w", err)
		}
		out = append(out, sid)
	}
	return out, rows.Err()
}

// DeleteClientSession removes the session and its stored keys.
func (r *SQLiteRepo) DeleteClientSession(ctx context.Context, sid string) error {
	if err := r.Storage(sid).Clear(ctx); err != nil {
		return err
	}
	_, err := r.conn.Exec(ctx, `DELETE FROM client_sessions WHERE sid = ?`, sid)
	return err
}
