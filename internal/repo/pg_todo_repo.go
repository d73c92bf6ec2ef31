package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"
	"github.com/birlikkoshan/todo-serverless/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgTodoColumns = `id, description, is_completed, created_at, updated_at`

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pgTodoColumns+` FROM todos ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("pg list todos: %w", err)
	}
	defer rows.Close()
	list := []dom.Todo{}
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.Description, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pg scan todo: %w", err)
		}
		list = append(list, normalizeTimes(t))
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	var t dom.Todo
	err := r.db.QueryRow(ctx, `SELECT `+pgTodoColumns+` FROM todos WHERE id = $1`, id).Scan(
		&t.ID, &t.Description, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, ErrNotFound
	}
	if err != nil {
		return dom.Todo{}, fmt.Errorf("pg get todo %s: %w", id, err)
	}
	return normalizeTimes(t), nil
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO todos (`+pgTodoColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Description, t.IsCompleted, t.CreatedAt, t.UpdatedAt,
	)
	if utils.IsPGUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("pg create todo %s: %w", t.ID, err)
	}
	return nil
}

func (r *PGTodoRepo) Save(ctx context.Context, t dom.Todo) error {
	query := `
		INSERT INTO todos (` + pgTodoColumns + `) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			is_completed = EXCLUDED.is_completed,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.Exec(ctx, query, t.ID, t.Description, t.IsCompleted, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("pg save todo %s: %w", t.ID, err)
	}
	return nil
}

func (r *PGTodoRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("pg delete todo %s: %w", id, err)
	}
	return nil
}

// normalizeTimes converts scanned timestamps to UTC.
func normalizeTimes(t dom.Todo) dom.Todo {
	t.CreatedAt = t.CreatedAt.UTC()
	if t.UpdatedAt != nil {
		u := t.UpdatedAt.UTC()
		t.UpdatedAt = &u
	}
	return t
}
