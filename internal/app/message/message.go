/*
Package message defines direct messages, their persistence contract, and the gateway
that validates, stores and re-reads a message before anyone is notified about it.
*/
package message

import (
	"context"
	"errors"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../../mocks/mock_message_repository.go -package=mocks -mock_names=Repository=MockMessageRepository

// ErrNotFound is returned by repositories when no message matches.
var ErrNotFound = errors.New("message not found")

// Participant is the public view of a user attached to a populated message.
type Participant struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

// Message is a persisted direct message. Sender and Receiver are set on populated reads.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"message"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`

	Sender   *Participant `json:"sender,omitempty"`
	Receiver *Participant `json:"receiver,omitempty"`
}

// NewMessage carries a validated message about to be written.
type NewMessage struct {
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
}

// Repository defines durable storage of messages.
type Repository interface {
	// Insert writes nm and returns the id of the new record.
	Insert(ctx context.Context, nm NewMessage) (string, error)

	// FindPopulated returns the message with id, with sender and receiver attached.
	FindPopulated(ctx context.Context, id string) (Message, error)

	// ListBetween returns the conversation between a and b in both directions,
	// ascending by creation time with ties in insertion order.
	ListBetween(ctx context.Context, a, b string) ([]Message, error)
}
