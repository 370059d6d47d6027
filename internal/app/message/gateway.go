package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"dmchat/internal/app/storage"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

const (
	// MaxTextBytes is the maximum message text size in bytes.
	MaxTextBytes = 5000

	cleanupTimeout = 30 * time.Second
)

// SendInput is the body of a send request. Image is either a base64 data URI,
// uploaded before the message is written, or an http(s) URL stored as-is.
type SendInput struct {
	Text  string `json:"message"`
	Image string `json:"image"`
}

// Gateway persists messages and reads conversations back.
type Gateway struct {
	messages Repository
	users    user.Repository
	objects  storage.ObjectStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewGateway constructs a Gateway.
func NewGateway(messages Repository, users user.Repository, objects storage.ObjectStore, m *metrics.Metrics) *Gateway {
	return &Gateway{
		messages: messages,
		users:    users,
		objects:  objects,
		metrics:  m,
		logger:   logx.Component("MessageGateway"),
	}
}

// Validate checks that in carries trimmed text or an image and that the text fits.
func Validate(in SendInput) (SendInput, *errs.CustomError) {
	in.Text = strings.TrimSpace(in.Text)
	in.Image = strings.TrimSpace(in.Image)

	if in.Text == "" && in.Image == "" {
		return in, errs.NewError(errs.ErrMessageEmpty)
	}

	if len(in.Text) > MaxTextBytes {
		return in, errs.NewError(errs.ErrMessageContentTooLong, MaxTextBytes)
	}

	return in, nil
}

// Persist validates and stores a message from senderID to receiverID and returns it populated.
// Nothing is written when validation, the receiver lookup or the image upload fails.
func (g *Gateway) Persist(ctx context.Context, senderID, receiverID string, in SendInput) (Message, error) {
	in, cerr := Validate(in)
	if cerr != nil {
		return Message{}, cerr
	}

	if _, err := g.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Message{}, errs.NewError(errs.ErrUserNotFound)
		}
		return Message{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	imageURL, uploadedKey, err := g.resolveImage(ctx, in.Image)
	if err != nil {
		return Message{}, err
	}

	id, err := g.messages.Insert(ctx, NewMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       in.Text,
		Image:      imageURL,
	})
	if err != nil {
		if uploadedKey != "" {
			g.discardUpload(ctx, uploadedKey)
		}
		return Message{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	g.metrics.MessagesPersisted.Inc()

	msg, err := g.messages.FindPopulated(ctx, id)
	if err != nil {
		return Message{}, errs.Wrap(errs.ErrStorageFailed, err)
	}

	return msg, nil
}

// ListBetween returns the conversation between a and b in persistence order.
func (g *Gateway) ListBetween(ctx context.Context, a, b string) ([]Message, error) {
	msgs, err := g.messages.ListBetween(ctx, a, b)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorageFailed, err)
	}

	if msgs == nil {
		msgs = []Message{}
	}

	return msgs, nil
}

// resolveImage returns the URL to store for image and the object key when it uploaded one.
func (g *Gateway) resolveImage(ctx context.Context, image string) (string, string, error) {
	switch {
	case image == "":
		return "", "", nil

	case storage.IsDataURI(image):
		img, cerr := storage.ParseDataURI(image)
		if cerr != nil {
			return "", "", cerr
		}
		return storage.UploadImage(ctx, g.objects, storage.PrefixImages, img)

	case storage.IsRemoteURL(image):
		return image, "", nil

	default:
		return "", "", errs.NewError(errs.ErrImageInvalid)
	}
}

func (g *Gateway) discardUpload(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := g.objects.Delete(ctx, key); err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove image of unsaved message")
	}
}
