package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// Storage is the key/value storage of one client, isolated by namespace.
type Storage struct {
	repo *SQLiteRepo
	ns   string
}

var _ repository.LocalStorage = (*Storage)(nil)

// Storage returns the local storage bound to namespace ns.
func (r *SQLiteRepo) Storage(ns string) *Storage {
	return &Storage{repo: r, ns: ns}
}

// GetItem returns the stored value and whether the key exists.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	row := s.repo.conn.QueryRow(ctx, `SELECT value FROM local_storage WHERE namespace = ? AND key = ?`, s.ns, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s/%s: %w", s.ns, key, err)
	}
	return v, true, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.repo.conn.Exec(ctx, `INSERT INTO local_storage (namespace, key, value, updated) VALUES (?, ?, ?, ?) ON CONFLICT(namespace, key) DO UPDATE SET value=excluded.value, updated=excluded.updated`, s.ns, key, value, now())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", s.ns, key, err)
	}
	s.repo.logger.Debug("local storage set", slog.String("namespace", s.ns), slog.String("key", key))
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.repo.conn.Exec(ctx, `DELETE FROM local_storage WHERE namespace = ? AND key = ?`, s.ns, key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", s.ns, key, err)
	}
	return nil
}

// Clear drops every key of the namespace.
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.repo.conn.Exec(ctx, `DELETE FROM local_storage WHERE namespace = ?`, s.ns); err != nil {
		return fmt.Errorf("clear %s: %w", s.ns, err)
	}
	return nil
}
