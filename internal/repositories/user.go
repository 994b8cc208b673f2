package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

type UserReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserReadRepository(db *sqlx.DB, txGetter TxGetter) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

// GetByUsername returns the user record, or nil when there is no such user.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1
	`

	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, username)

	logQuery(ctx, query, []any{username}, user.Username, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns basic info on all users ordered by username.
func (r *UserReadRepository) List(ctx context.Context) ([]models.UserBasic, error) {
	const query = `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username
	`

	users := []models.UserBasic{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &users, query)

	logQuery(ctx, query, nil, len(users), err)

	if err != nil {
		return nil, err
	}

	return users, nil
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new user. It returns nil without an error when the username is already taken.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash, firstName, lastName, phone string) (*models.UserDB, error) {
	const query = `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (username) DO NOTHING
		RETURNING username, password, first_name, last_name, phone, join_at, last_login_at
	`

	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query,
		username, passwordHash, firstName, lastName, phone)

	// the hash stays out of the log
	logQuery(ctx, query, []any{username, firstName, lastName, phone}, user.Username, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateLastLogin sets last_login_at to now. It returns sql.ErrNoRows for an unknown username.
func (r *UserWriteRepository) UpdateLastLogin(ctx context.Context, username string) error {
	const query = `
		UPDATE users
		SET last_login_at = NOW()
		WHERE username = $1
		RETURNING username
	`

	var updated string
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &updated, query, username)

	logQuery(ctx, query, []any{username}, updated, err)

	return err
}
