// Package store is the task registry behind the list command: a small sqlite
// database mirroring the tasks currently known to the scheduler.
//
// Scheduled timers do not survive a daemon restart, so Open wipes any rows
// left over from a previous run; the registry never claims a schedule that is
// not actually live.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"fmn/internal/task"
)

//go:embed migrations.sql
var migrations string

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open task registry: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if _, err := db.Exec(migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate task registry: %w", err)
	}
	if err := s.reset(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// reset drops rows from a previous daemon run.
func (s *Store) reset(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return fmt.Errorf("reset task registry: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info().Int64("stale", n).Msg("dropped tasks from previous run")
	}
	return nil
}

func (s *Store) Add(ctx context.Context, t task.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, description, clock_kind, fire_at, every_ns, hour, minute, image, sound, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Description, int(t.Clock.Kind), nullTime(t.Clock.At), int64(t.Clock.Every),
		t.Clock.Hour, t.Clock.Minute, nullStr(t.Image), nullStr(t.Sound),
		t.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("register task %s: %w", t.ID, err)
	}
	return nil
}

// Remove deletes a task row. Reports whether the row existed; removing an
// unknown id is not an error.
func (s *Store) Remove(ctx context.Context, id task.ID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove task %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, clock_kind, fire_at, every_ns, hour, minute, image, sound, created_at
		 FROM tasks ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		var (
			t         task.Task
			kind      int
			fireAt    sql.NullString
			everyNS   int64
			image     sql.NullString
			sound     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Description, &kind, &fireAt, &everyNS,
			&t.Clock.Hour, &t.Clock.Minute, &image, &sound, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Clock.Kind = task.ClockKind(kind)
		t.Clock.Every = time.Duration(everyNS)
		if fireAt.Valid {
			at, err := time.Parse(time.RFC3339Nano, fireAt.String)
			if err != nil {
				return nil, fmt.Errorf("scan task %s fire_at: %w", t.ID, err)
			}
			t.Clock.At = at
		}
		t.Image = image.String
		t.Sound = sound.String
		if at, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			t.CreatedAt = at
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
