package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/medication-bot/internal/domain"
)

// SQLiteJournal implements Journal using an embedded SQLite database.
type SQLiteJournal struct{ db *sql.DB }

// OpenSQLite opens (or creates) the journal database at the given path,
// applies PRAGMAs and runs migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, errors.New("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Record appends one delivery. A zero At is stamped with the current time.
func (j *SQLiteJournal) Record(ctx context.Context, d domain.Delivery) error {
	if d.UserID == "" {
		return errors.New("delivery without user id")
	}
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO deliveries (user_id, kind, delivered, error, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.UserID, string(d.Kind), boolToInt(d.Delivered), toNullString(d.Error), at.UTC().Unix(),
	)
	return err
}

// Recent returns up to limit deliveries for the user, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, userID string, limit int) ([]domain.Delivery, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT user_id, kind, delivered, error, created_at
		FROM deliveries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Delivery
	for rows.Next() {
		var (
			uid       string
			kind      string
			delivered int
			errText   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&uid, &kind, &delivered, &errText, &createdAt); err != nil {
			return nil, err
		}
		res = append(res, domain.Delivery{
			UserID:    uid,
			Kind:      domain.NotificationKind(kind),
			Delivered: delivered != 0,
			Error:     errText.String,
			At:        fromUnix(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// CountSince counts successful deliveries of kind for the user at or after since.
func (j *SQLiteJournal) CountSince(ctx context.Context, userID string, kind domain.NotificationKind, since time.Time) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM deliveries
		WHERE user_id = ? AND kind = ? AND delivered = 1 AND created_at >= ?`,
		userID, string(kind), since.UTC().Unix(),
	).Scan(&n)
	return n, err
}
