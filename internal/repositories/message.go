package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

// MessageReadRepository handles message read operations
type MessageReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewMessageReadRepository(db *sqlx.DB, txGetter TxGetter) *MessageReadRepository {
	return &MessageReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the message with both endpoint profiles.
// It returns nil when the message is absent or either endpoint cannot be resolved.
func (r *MessageReadRepository) GetByID(ctx context.Context, id int64) (*models.MessageDetail, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username   AS "from_user.username",
		       f.first_name AS "from_user.first_name",
		       f.last_name  AS "from_user.last_name",
		       f.phone      AS "from_user.phone",
		       t.username   AS "to_user.username",
		       t.first_name AS "to_user.first_name",
		       t.last_name  AS "to_user.last_name",
		       t.phone      AS "to_user.phone"
		FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
		WHERE m.id = $1
	`

	var msg models.MessageDetail
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &msg, query, id)

	logQuery(ctx, query, []any{id}, msg.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// ListFrom returns messages sent by username, each joined with its own recipient profile.
func (r *MessageReadRepository) ListFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username   AS "to_user.username",
		       u.first_name AS "to_user.first_name",
		       u.last_name  AS "to_user.last_name",
		       u.phone      AS "to_user.phone"
		FROM messages AS m
		JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.sent_at, m.id
	`

	messages := []models.SentMessage{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &messages, query, username)

	logQuery(ctx, query, []any{username}, len(messages), err)

	if err != nil {
		return nil, err
	}

	return messages, nil
}

// ListTo returns messages sent to username, each joined with its own sender profile.
func (r *MessageReadRepository) ListTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username   AS "from_user.username",
		       u.first_name AS "from_user.first_name",
		       u.last_name  AS "from_user.last_name",
		       u.phone      AS "from_user.phone"
		FROM messages AS m
		JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.sent_at, m.id
	`

	messages := []models.ReceivedMessage{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &messages, query, username)

	logQuery(ctx, query, []any{username}, len(messages), err)

	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MessageWriteRepository handles message write operations
type MessageWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewMessageWriteRepository(db *sqlx.DB, txGetter TxGetter) *MessageWriteRepository {
	return &MessageWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a message; sent_at is assigned by the database.
func (r *MessageWriteRepository) Save(ctx context.Context, fromUsername, toUsername, body string) (*models.Message, error) {
	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`

	var msg models.Message
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &msg, query, fromUsername, toUsername, body)

	logQuery(ctx, query, []any{fromUsername, toUsername}, msg.ID, err)

	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// MarkRead moves an unread message to the read state in a single compare-and-set update.
// It returns nil when no unread message with the id exists.
func (r *MessageWriteRepository) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	const query = `
		UPDATE messages
		SET read_at = NOW()
		WHERE id = $1 AND read_at IS NULL
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`

	var msg models.Message
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &msg, query, id)

	logQuery(ctx, query, []any{id}, msg.ReadAt, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}
