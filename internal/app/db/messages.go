package db

import (
	"context"
	"fmt"

	"dmchat/internal/app/message"
	"dmchat/internal/pkg/randx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository stores messages in PostgreSQL.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository constructs a MessageRepository on pool.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert writes nm under a fresh id.
func (r *MessageRepository) Insert(ctx context.Context, nm message.NewMessage) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, text, image)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text`,
		randx.NewID(), nm.SenderID, nm.ReceiverID, nm.Text, nm.Image,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	return id, nil
}

// FindPopulated returns the message with id joined with the public fields of both users.
func (r *MessageRepository) FindPopulated(ctx context.Context, id string) (message.Message, error) {
	if !randx.IsValidID(id) {
		return message.Message{}, message.ErrNotFound
	}

	var (
		m                message.Message
		sender, receiver message.Participant
	)

	err := r.pool.QueryRow(ctx,
		`SELECT m.id::text, m.sender_id::text, m.receiver_id::text, m.text, m.image, m.created_at,
		        s.name, s.profile_pic, rc.name, rc.profile_pic
		 FROM messages m
		 JOIN users s ON s.id = m.sender_id
		 JOIN users rc ON rc.id = m.receiver_id
		 WHERE m.id = $1`, id,
	).Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt,
		&sender.Name, &sender.ProfilePic, &receiver.Name, &receiver.ProfilePic,
	)
	if err != nil {
		if IsNoRows(err) {
			return message.Message{}, message.ErrNotFound
		}
		return message.Message{}, fmt.Errorf("find message: %w", err)
	}

	sender.ID = m.SenderID
	receiver.ID = m.ReceiverID
	m.Sender = &sender
	m.Receiver = &receiver

	return m, nil
}

// ListBetween returns the conversation between a and b ordered by creation time, then insertion.
func (r *MessageRepository) ListBetween(ctx context.Context, a, b string) ([]message.Message, error) {
	if !randx.IsValidID(a) || !randx.IsValidID(b) {
		return []message.Message{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, sender_id::text, receiver_id::text, text, image, created_at
		 FROM messages
		 WHERE LEAST(sender_id, receiver_id) = LEAST($1::uuid, $2::uuid)
		   AND GREATEST(sender_id, receiver_id) = GREATEST($1::uuid, $2::uuid)
		 ORDER BY created_at, seq`, a, b)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (message.Message, error) {
		var m message.Message
		err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	return msgs, nil
}
