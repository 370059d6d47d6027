package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/randx"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix   = "msg:"
	messageIDPrefix = "msgid:"
)

// messageRecord is the stored form of a message.
type messageRecord struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r messageRecord) toMessage() message.Message {
	return message.Message{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Text:       r.Text,
		Image:      r.Image,
		CreatedAt:  r.CreatedAt,
	}
}

// conversationPrefix is shared by both directions of the conversation between a and b.
func conversationPrefix(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s%s:%s:", messagePrefix, a, b)
}

func messageKey(rec messageRecord, seq uint64) []byte {
	return fmt.Appendf(nil, "%s%019d:%020d", conversationPrefix(rec.SenderID, rec.ReceiverID), rec.CreatedAt.UnixNano(), seq)
}

// MessageRepository stores messages in badger.
type MessageRepository struct {
	store *Store
}

// NewMessageRepository constructs a MessageRepository on store.
func NewMessageRepository(store *Store) *MessageRepository {
	return &MessageRepository{store: store}
}

// Insert writes nm under a fresh id. Keys sort by creation time, then by a store-wide sequence.
func (r *MessageRepository) Insert(_ context.Context, nm message.NewMessage) (string, error) {
	seq, err := r.store.seq.Next()
	if err != nil {
		return "", fmt.Errorf("failed to allocate message sequence: %w", err)
	}

	rec := messageRecord{
		ID:         randx.NewID(),
		SenderID:   nm.SenderID,
		ReceiverID: nm.ReceiverID,
		Text:       nm.Text,
		Image:      nm.Image,
		CreatedAt:  time.Now().UTC(),
	}
	key := messageKey(rec, seq)

	err = r.store.db.Update(func(txn *badger.Txn) error {
		if err := putJSON(txn, key, rec); err != nil {
			return err
		}
		return txn.Set([]byte(messageIDPrefix+rec.ID), key)
	})
	if err != nil {
		return "", err
	}

	return rec.ID, nil
}

// FindPopulated returns the message with id with the public fields of both users attached.
func (r *MessageRepository) FindPopulated(_ context.Context, id string) (message.Message, error) {
	var (
		rec              messageRecord
		sender, receiver userRecord
	)

	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(messageIDPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return message.ErrNotFound
			}
			return err
		}

		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return message.ErrNotFound
			}
			return err
		}

		if err := item.Value(func(v []byte) error {
			return json.Unmarshal(v, &rec)
		}); err != nil {
			return err
		}

		if err := getUser(txn, rec.SenderID, &sender); err != nil {
			return populateErr(err)
		}
		return populateErr(getUser(txn, rec.ReceiverID, &receiver))
	})
	if err != nil {
		return message.Message{}, err
	}

	m := rec.toMessage()
	m.Sender = &message.Participant{ID: sender.ID, Name: sender.Name, ProfilePic: sender.ProfilePic}
	m.Receiver = &message.Participant{ID: receiver.ID, Name: receiver.Name, ProfilePic: receiver.ProfilePic}

	return m, nil
}

// populateErr reports a message whose participant is gone as not found.
func populateErr(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return message.ErrNotFound
	}
	return err
}

// ListBetween returns the conversation between a and b in key order.
func (r *MessageRepository) ListBetween(_ context.Context, a, b string) ([]message.Message, error) {
	msgs := []message.Message{}

	err := r.store.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(a, b))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec messageRecord
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			}); err != nil {
				return fmt.Errorf("failed to decode message: %w", err)
			}
			msgs = append(msgs, rec.toMessage())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return msgs, nil
}
