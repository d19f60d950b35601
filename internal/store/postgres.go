package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/dbx"
	"github.com/dkoval/mailshare/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements the store interfaces over *sql.DB.
// Single-statement operations run directly on the pool; reads spanning
// multiple statements go through dbx.WithTx.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store bound to the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to PostgreSQL via the pgx stdlib driver and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT id, subject, first_message_at, last_sent_at, last_received_at
		FROM conversations WHERE id=$1`

	var c models.Conversation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Subject, &c.FirstMessageAt, &c.LastSentAt, &c.LastReceivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

// MessagesWithBody loads the conversation's messages and their
// attachments. Both selects run in one read-only transaction so the
// attachments always belong to the message rows already fetched.
func (s *PostgresStore) MessagesWithBody(ctx context.Context, conversationID string) ([]*models.Message, error) {
	var result []*models.Message

	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT id, conversation_id, sender, sent_at, version, hidden, body
			FROM messages WHERE conversation_id=$1 ORDER BY id`

		rows, err := tx.QueryContext(ctx, query, conversationID)
		if err != nil {
			return fmt.Errorf("failed to select messages: %w", err)
		}
		defer rows.Close()

		byID := make(map[string]*models.Message)
		for rows.Next() {
			var m models.Message
			if err := rows.Scan(
				&m.ID, &m.ConversationID, &m.From, &m.SentAt, &m.Version, &m.Hidden, &m.Body,
			); err != nil {
				return err
			}
			byID[m.ID] = &m
			result = append(result, &m)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return attachmentsInto(ctx, tx, conversationID, byID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// attachmentsInto loads all attachments of the conversation and hangs
// them off their parent messages.
func attachmentsInto(ctx context.Context, tx dbx.DBTX, conversationID string, msgs map[string]*models.Message) error {
	query := `SELECT a.id, a.message_id, a.name
		FROM attachments a
		JOIN messages m ON m.id = a.message_id
		WHERE m.conversation_id=$1 ORDER BY a.id`

	rows, err := tx.QueryContext(ctx, query, conversationID)
	if err != nil {
		return fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.MessageID, &a.Name); err != nil {
			return err
		}
		if m, ok := msgs[a.MessageID]; ok {
			m.Attachments = append(m.Attachments, a)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) FindBySubjectFirstMessage(ctx context.Context, subject string, from, to time.Time) ([]*models.Conversation, error) {
	query := `SELECT id, subject, first_message_at, last_sent_at, last_received_at
		FROM conversations
		WHERE subject=$1 AND first_message_at BETWEEN $2 AND $3
		ORDER BY first_message_at`
	return s.selectConversations(ctx, query, subject, from, to)
}

func (s *PostgresStore) FindBySubjectLastActivity(ctx context.Context, subject string, from, to time.Time) ([]*models.Conversation, error) {
	query := `SELECT id, subject, first_message_at, last_sent_at, last_received_at
		FROM conversations
		WHERE subject=$1 AND (last_sent_at BETWEEN $2 AND $3 OR last_received_at BETWEEN $2 AND $3)
		ORDER BY first_message_at`
	return s.selectConversations(ctx, query, subject, from, to)
}

func (s *PostgresStore) selectConversations(ctx context.Context, query string, args ...any) ([]*models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select conversations: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Subject, &c.FirstMessageAt, &c.LastSentAt, &c.LastReceivedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetMeta(ctx context.Context, conversationID, key string) ([]byte, error) {
	query := `SELECT value FROM conversation_meta WHERE conversation_id=$1 AND ns=$2`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, conversationID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) SetMeta(ctx context.Context, conversationID, key string, value []byte) error {
	query := `
		INSERT INTO conversation_meta (conversation_id, ns, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id, ns)
		DO UPDATE SET value = EXCLUDED.value;
	`
	res, err := s.db.ExecContext(ctx, query, conversationID, key, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
