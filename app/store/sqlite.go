package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

var _ tasks.Store = &SQLiteStore{}

// SQLiteStore is the local backend, mirroring the spreadsheet's row
// semantics: rows keep their number across soft-deletes, a cleared row is a
// blank row.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		path = filepath.Join(dir, "data", "tasks.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}
	if _, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS task_rows (
            row_num  INTEGER PRIMARY KEY,
            created  TEXT NOT NULL DEFAULT '',
            assignee TEXT NOT NULL DEFAULT '',
            text     TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            due      TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            status   TEXT NOT NULL DEFAULT ''
        );
    `); err != nil {
		return nil, fmt.Errorf("%w: create table: %v", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListActive(ctx context.Context) ([]tasks.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_num, created, assignee, text, location, due, category, status
		 FROM task_rows
		 WHERE text != ''
		 ORDER BY row_num ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []tasks.Task
	for rows.Next() {
		var t tasks.Task
		if err = rows.Scan(&t.Row, &t.Created, &t.Assignee, &t.Text, &t.Location, &t.When, &t.Category, &t.Status); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		if t.Status == "" {
			t.Status = tasks.StatusPending
		}
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) Append(ctx context.Context, ts []tasks.Task) error {
	var next int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_num), 1) + 1 FROM task_rows WHERE text != ''`,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, t := range ts {
		if _, err = s.db.ExecContext(ctx,
			`INSERT INTO task_rows (row_num, created, assignee, text, location, due, category, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(row_num) DO UPDATE SET
			   created=excluded.created, assignee=excluded.assignee, text=excluded.text,
			   location=excluded.location, due=excluded.due, category=excluded.category,
			   status=excluded.status`,
			next, t.Created, t.Assignee, t.Text, t.Location, t.When, t.Category, t.Status,
		); err != nil {
			return fmt.Errorf("%w: insert row %d: %v", ErrUnavailable, next, err)
		}
		next++
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, row int, t tasks.Task) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO task_rows (row_num, created, assignee, text, location, due, category, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(row_num) DO UPDATE SET
		   created=excluded.created, assignee=excluded.assignee, text=excluded.text,
		   location=excluded.location, due=excluded.due, category=excluded.category,
		   status=excluded.status`,
		row, t.Created, t.Assignee, t.Text, t.Location, t.When, t.Category, t.Status,
	); err != nil {
		return fmt.Errorf("%w: update row %d: %v", ErrUnavailable, row, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, row int) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE task_rows
		 SET created='', assignee='', text='', location='', due='', category='', status=''
		 WHERE row_num = ?`, row,
	); err != nil {
		return fmt.Errorf("%w: clear row %d: %v", ErrUnavailable, row, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
