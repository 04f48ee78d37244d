package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the credential store. The credential supplied by the
// client is treated as an opaque secret and only its bcrypt hash is kept.
type UserRepository struct {
	db   database.Querier
	cost int
}

func NewUserRepository(db database.Querier, cost int) *UserRepository {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserRepository{db: db, cost: cost}
}

// Register inserts a new user. A duplicate username or email yields
// ErrConflict.
func (r *UserRepository) Register(ctx context.Context, username, email, secret string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	u := &models.User{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user whose username and credential both match.
// Unknown users and wrong credentials fail the same way, after the same
// amount of bcrypt work.
func (r *UserRepository) Authenticate(ctx context.Context, username, secret string) (*models.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(r.cost), []byte(secret))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

var dummyHashes sync.Map // cost -> []byte

func dummyHash(cost int) []byte {
	if h, ok := dummyHashes.Load(cost); ok {
		return h.([]byte)
	}
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-credential"), cost)
	if err != nil {
		return nil
	}
	dummyHashes.Store(cost, h)
	return h
}
