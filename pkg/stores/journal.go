package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds journal configuration.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	// BusyTimeout bounds how long a write waits for a lock.
	BusyTimeout time.Duration
}

// Journal records roots and commits in SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens the journal at cfg.Path and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.Path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &Journal{db: db, path: cfg.Path}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(j.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// HealthCheck verifies the database is reachable.
func (j *Journal) HealthCheck(ctx context.Context) error {
	if err := j.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// RecordRoot inserts a root, or refreshes its target and deck id if a
// placeholder row already exists.
func (j *Journal) RecordRoot(ctx context.Context, root RootRecord) error {
	query := `
		INSERT INTO roots (id, target, deck_id, configured_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET target = excluded.target, deck_id = excluded.deck_id
	`
	_, err := j.db.ExecContext(ctx, query, root.ID, root.Target, root.DeckID, toUnix(root.ConfiguredAt))
	if err != nil {
		return fmt.Errorf("failed to record root: %w", err)
	}
	return nil
}

// FinalizeRoot marks a root unmounted.
func (j *Journal) FinalizeRoot(ctx context.Context, rootID string, commits int, at time.Time) error {
	query := `UPDATE roots SET unmounted_at = ?, commits = ? WHERE id = ?`

	result, err := j.db.ExecContext(ctx, query, toUnix(at), commits, rootID)
	if err != nil {
		return fmt.Errorf("failed to finalize root: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("root %s: %w", rootID, ErrNotFound)
	}
	return nil
}

// GetRoot retrieves a root by id.
func (j *Journal) GetRoot(ctx context.Context, id string) (*RootRecord, error) {
	query := `
		SELECT id, target, deck_id, configured_at, unmounted_at, commits
		FROM roots
		WHERE id = ?
	`
	root, err := scanRoot(j.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("root %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get root: %w", err)
	}
	return root, nil
}

// ListRoots lists roots, most recently configured first.
func (j *Journal) ListRoots(ctx context.Context) ([]*RootRecord, error) {
	query := `
		SELECT id, target, deck_id, configured_at, unmounted_at, commits
		FROM roots
		ORDER BY configured_at DESC, id
	`
	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	defer rows.Close()

	roots := []*RootRecord{}
	for rows.Next() {
		root, err := scanRoot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan root: %w", err)
		}
		roots = append(roots, root)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roots: %w", err)
	}
	return roots, nil
}

// RecordCommit inserts a commit. A root row is created for unknown roots
// so commits observed without their configure event are kept.
func (j *Journal) RecordCommit(ctx context.Context, c CommitRecord) error {
	views, err := json.Marshal(nonNil(c.Views))
	if err != nil {
		return fmt.Errorf("failed to marshal views: %w", err)
	}
	layers, err := json.Marshal(nonNil(c.Layers))
	if err != nil {
		return fmt.Errorf("failed to marshal layers: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO roots (id, configured_at) VALUES (?, ?)`,
		c.RootID, toUnix(c.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to ensure root: %w", err)
	}

	query := `
		INSERT INTO commits (id, root_id, status, views, layers, code, reason, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		c.ID,
		c.RootID,
		c.Status,
		string(views),
		string(layers),
		c.Code,
		c.Reason,
		int64(c.Duration),
		toUnix(c.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to record commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCommit retrieves a commit by id.
func (j *Journal) GetCommit(ctx context.Context, id string) (*CommitRecord, error) {
	query := `
		SELECT id, root_id, status, views, layers, code, reason, duration_ns, created_at
		FROM commits
		WHERE id = ?
	`
	c, err := scanCommit(j.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("commit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	return c, nil
}

// ListCommits lists commits matching filter in the order they were
// recorded.
func (j *Journal) ListCommits(ctx context.Context, filter CommitFilter) ([]*CommitRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.RootID != "" {
		where = append(where, "root_id = ?")
		args = append(args, filter.RootID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `
		SELECT id, root_id, status, views, layers, code, reason, duration_ns, created_at
		FROM commits
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, rowid"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	defer rows.Close()

	commits := []*CommitRecord{}
	for rows.Next() {
		c, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commits: %w", err)
	}
	return commits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoot(s scanner) (*RootRecord, error) {
	var (
		root         RootRecord
		configuredAt int64
		unmountedAt  sql.NullInt64
	)
	if err := s.Scan(&root.ID, &root.Target, &root.DeckID, &configuredAt, &unmountedAt, &root.Commits); err != nil {
		return nil, err
	}
	root.ConfiguredAt = fromUnix(configuredAt)
	if unmountedAt.Valid {
		t := fromUnix(unmountedAt.Int64)
		root.UnmountedAt = &t
	}
	return &root, nil
}

func scanCommit(s scanner) (*CommitRecord, error) {
	var (
		c             CommitRecord
		views, layers string
		duration      int64
		createdAt     int64
	)
	if err := s.Scan(&c.ID, &c.RootID, &c.Status, &views, &layers, &c.Code, &c.Reason, &duration, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(views), &c.Views); err != nil {
		return nil, fmt.Errorf("failed to unmarshal views: %w", err)
	}
	if err := json.Unmarshal([]byte(layers), &c.Layers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layers: %w", err)
	}
	c.Duration = time.Duration(duration)
	c.CreatedAt = fromUnix(createdAt)
	return &c, nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixNano()
}

func fromUnix(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
