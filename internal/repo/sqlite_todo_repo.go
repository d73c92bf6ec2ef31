package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"
	"github.com/birlikkoshan/todo-serverless/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type sqliteTodoRow struct {
	ID          string     `db:"id"`
	Description string     `db:"description"`
	IsCompleted bool       `db:"is_completed"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

func (r sqliteTodoRow) todo() dom.Todo {
	return normalizeTimes(dom.Todo{
		ID:          r.ID,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

// SQLiteTodoRepo stores todos in a local SQLite file. Used for local runs and tests.
type SQLiteTodoRepo struct {
	db *sqlx.DB
}

// OpenSQLiteTodoRepo opens (or creates) the database at path and applies migrations.
// Pass ":memory:" for a throwaway database.
func OpenSQLiteTodoRepo(path string) (*SQLiteTodoRepo, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if err := migrateSQLite(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteTodoRepo{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, migrations.SQLiteDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (r *SQLiteTodoRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	var rows []sqliteTodoRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM todos ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	list := make([]dom.Todo, len(rows))
	for i := range rows {
		list[i] = rows[i].todo()
	}
	return list, nil
}

func (r *SQLiteTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	var row sqliteTodoRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM todos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dom.Todo{}, ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return row.todo(), nil
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, t dom.Todo) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (id, description, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.Description, t.IsCompleted, t.CreatedAt.UTC(), utcPtr(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating todo %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *SQLiteTodoRepo) Save(ctx context.Context, t dom.Todo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (id, description, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			description = excluded.description,
			is_completed = excluded.is_completed,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		t.ID, t.Description, t.IsCompleted, t.CreatedAt.UTC(), utcPtr(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving todo %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
