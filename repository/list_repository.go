package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
)

// ListRepository stores todo lists. Every call is scoped to the owning
// user; a list that belongs to someone else is reported as ErrNotFound.
type ListRepository struct {
	db database.Querier
}

func NewListRepository(db database.Querier) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `id, user_id, title, created_at, updated_at`

// List returns one page of the user's lists, optionally filtered by a
// case-insensitive title substring.
func (r *ListRepository) List(ctx context.Context, userID string, p models.Pagination, title string) ([]models.TodoList, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	f := &filter{}
	f.eq("user_id", userID)
	f.titleContains(title)
	query := `SELECT ` + listColumns + ` FROM todo_list` + f.where() +
		` ORDER BY created_at, id LIMIT ` + f.bind(p.PerPage) + ` OFFSET ` + f.bind(p.Offset())

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list todo lists: %w", err)
	}
	defer rows.Close()

	out := []models.TodoList{}
	for rows.Next() {
		var l models.TodoList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ListRepository) Get(ctx context.Context, userID, listID string) (*models.TodoList, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var l models.TodoList
	err := r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM todo_list WHERE id = $1 AND user_id = $2`, listID, userID).
		Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo list: %w", err)
	}
	return &l, nil
}

func (r *ListRepository) Create(ctx context.Context, userID, title string) (*models.TodoList, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ts := now()
	l := &models.TodoList{
		ID:        utils.NewID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todo_list (id, user_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.UserID, l.Title, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert todo list: %w", err)
	}
	return l, nil
}

// Update sets the title and bumps updated_at in a single statement.
func (r *ListRepository) Update(ctx context.Context, userID, listID, title string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE todo_list SET title = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		title, now(), listID, userID)
	if err != nil {
		return fmt.Errorf("update todo list: %w", err)
	}
	return expectAffected(res)
}

// Delete removes the list; its items go with it through the foreign key.
func (r *ListRepository) Delete(ctx context.Context, userID, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_list WHERE id = $1 AND user_id = $2`, listID, userID)
	if err != nil {
		return fmt.Errorf("delete todo list: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
