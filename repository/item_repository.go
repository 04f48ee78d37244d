package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
)

// ItemRepository stores the items of a list. Items are always addressed by
// (list_id, item_id) so an id from another list never matches. Callers
// resolve list ownership before reaching here.
type ItemRepository struct {
	db database.Querier
}

func NewItemRepository(db database.Querier) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, list_id, title, description, status, priority, due_date, created_at, updated_at`

// List returns one page of the list's items plus the number of items that
// match the filter across all pages.
func (r *ItemRepository) List(ctx context.Context, listID string, p models.Pagination, title string) ([]models.TodoItem, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count := &filter{}
	count.eq("list_id", listID)
	count.titleContains(title)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todo_items`+count.where(), count.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count todo items: %w", err)
	}

	f := &filter{}
	f.eq("list_id", listID)
	f.titleContains(title)
	query := `SELECT ` + itemColumns + ` FROM todo_items` + f.where() +
		` ORDER BY created_at, id LIMIT ` + f.bind(p.PerPage) + ` OFFSET ` + f.bind(p.Offset())

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list todo items: %w", err)
	}
	defer rows.Close()

	out := []models.TodoItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ItemRepository) Get(ctx context.Context, listID, itemID string) (*models.TodoItem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM todo_items WHERE id = $1 AND list_id = $2`, itemID, listID)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo item: %w", err)
	}
	return it, nil
}

// Create inserts an item. Status defaults to pending and priority to 0.
func (r *ItemRepository) Create(ctx context.Context, listID string, req models.CreateItemRequest) (*models.TodoItem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ts := now()
	it := &models.TodoItem{
		ID:          utils.NewID(),
		ListID:      listID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusPending,
		DueDate:     utcPtr(req.DueDate),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if req.Status != nil {
		it.Status = *req.Status
	}
	if req.Priority != nil {
		it.Priority = *req.Priority
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todo_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.ListID, it.Title, nullString(it.Description), string(it.Status), it.Priority,
		nullTime(it.DueDate), it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert todo item: %w", err)
	}
	return it, nil
}

// Update writes only the supplied fields, plus updated_at. A set Optional
// with no value writes NULL.
func (r *ItemRepository) Update(ctx context.Context, listID, itemID string, req models.UpdateItemRequest) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a := &assignments{}
	if req.Title != nil {
		a.set("title", *req.Title)
	}
	if req.Description.Set {
		a.set("description", nullString(req.Description.Value))
	}
	if req.Status != nil {
		a.set("status", string(*req.Status))
	}
	if req.Priority != nil {
		a.set("priority", *req.Priority)
	}
	if req.DueDate.Set {
		a.set("due_date", nullTime(utcPtr(req.DueDate.Value)))
	}
	a.set("updated_at", now())

	query := `UPDATE todo_items SET ` + a.String() +
		` WHERE id = ` + a.bind(itemID) + ` AND list_id = ` + a.bind(listID)
	res, err := r.db.ExecContext(ctx, query, a.args...)
	if err != nil {
		return fmt.Errorf("update todo item: %w", err)
	}
	return expectAffected(res)
}

func (r *ItemRepository) Delete(ctx context.Context, listID, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_items WHERE id = $1 AND list_id = $2`, itemID, listID)
	if err != nil {
		return fmt.Errorf("delete todo item: %w", err)
	}
	return expectAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.TodoItem, error) {
	var (
		it     models.TodoItem
		desc   sql.NullString
		status string
		due    sql.NullTime
	)
	if err := s.Scan(&it.ID, &it.ListID, &it.Title, &desc, &status, &it.Priority, &due, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.Status = models.ItemStatus(status)
	if desc.Valid {
		it.Description = &desc.String
	}
	if due.Valid {
		t := due.Time.UTC()
		it.DueDate = &t
	}
	return &it, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
