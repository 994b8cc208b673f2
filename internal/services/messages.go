package services

//go:generate mockgen -source=messages.go -destination=messages_mock.go -package=services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-messenger/internal/logger"
	"github.com/sbilibin2017/gw-messenger/internal/models"
	"github.com/segmentio/kafka-go"
)

// MessageReader defines message read operations.
type MessageReader interface {
	GetByID(ctx context.Context, id int64) (*models.MessageDetail, error)          // Returns nil when the message does not exist
	ListFrom(ctx context.Context, username string) ([]models.SentMessage, error)   // Outbound messages of username
	ListTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) // Inbound messages of username
}

// MessageWriter defines message write operations.
type MessageWriter interface {
	Save(ctx context.Context, fromUsername, toUsername, body string) (*models.Message, error)
	MarkRead(ctx context.Context, id int64) (*models.Message, error) // Returns nil unless an unread message was transitioned
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// MessageService enforces who may read, create and mark messages, and publishes lifecycle events.
type MessageService struct {
	reader      MessageReader
	writer      MessageWriter
	users       UserReader
	kafkaWriter KafkaWriter
	afterCommit CommitHook
}

// CommitHook runs fn once the changes made under ctx are durable.
type CommitHook func(ctx context.Context, fn func())

// MessageServiceOpt configures a MessageService.
type MessageServiceOpt func(*MessageService)

// WithAfterCommit delays event publishing until hook runs the callback.
func WithAfterCommit(hook CommitHook) MessageServiceOpt {
	return func(s *MessageService) {
		s.afterCommit = hook
	}
}

// NewMessageService creates a new MessageService. kafkaWriter may be nil.
func NewMessageService(
	reader MessageReader,
	writer MessageWriter,
	users UserReader,
	kafkaWriter KafkaWriter,
	opts ...MessageServiceOpt,
) *MessageService {
	s := &MessageService{
		reader:      reader,
		writer:      writer,
		users:       users,
		kafkaWriter: kafkaWriter,
		afterCommit: func(_ context.Context, fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the message detail if principal is its sender or recipient.
func (s *MessageService) Get(ctx context.Context, principal string, id int64) (*models.MessageDetail, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}

	msg, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get message", "id", id, "err", err)
		return nil, err
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	if !msg.IsParticipant(principal) {
		logger.FromContext(ctx).Infow("message read denied", "id", id, "principal", principal)
		return nil, ErrForbidden
	}

	return msg, nil
}

// Create sends body from principal to toUsername. The sender is always the principal.
func (s *MessageService) Create(ctx context.Context, principal, toUsername, body string) (*models.Message, error) {
	log := logger.FromContext(ctx)

	if principal == "" {
		return nil, ErrUnauthenticated
	}
	if toUsername == "" || body == "" {
		return nil, fmt.Errorf("%w: to_username and body are required", ErrValidation)
	}

	recipient, err := s.users.GetByUsername(ctx, toUsername)
	if err != nil {
		log.Errorw("failed to get recipient", "to", toUsername, "err", err)
		return nil, err
	}
	if recipient == nil {
		return nil, ErrNotFound
	}

	msg, err := s.writer.Save(ctx, principal, toUsername, body)
	if err != nil {
		log.Errorw("failed to save message", "from", principal, "to", toUsername, "err", err)
		return nil, err
	}

	s.afterCommit(ctx, func() { s.publishEvent(ctx, models.MessageCreated, msg) })

	return msg, nil
}

// MarkRead moves the message to the read state. Only the recipient may do so.
// Marking an already read message is a no-op that returns the original read timestamp.
func (s *MessageService) MarkRead(ctx context.Context, principal string, id int64) (*models.Message, error) {
	detail, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if detail.ToUser.Username != principal {
		logger.FromContext(ctx).Infow("mark read denied", "id", id, "principal", principal)
		return nil, ErrForbidden
	}
	if detail.ReadAt != nil {
		return detail.Message(), nil
	}

	msg, err := s.writer.MarkRead(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to mark message read", "id", id, "err", err)
		return nil, err
	}
	if msg == nil {
		// a concurrent call won the transition
		current, err := s.reader.GetByID(ctx, id)
		if err != nil {
			logger.FromContext(ctx).Errorw("failed to get message", "id", id, "err", err)
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		return current.Message(), nil
	}

	s.afterCommit(ctx, func() { s.publishEvent(ctx, models.MessageRead, msg) })

	return msg, nil
}

// ListFrom returns the outbound messages of username. Only the user themselves may list them.
func (s *MessageService) ListFrom(ctx context.Context, principal, username string) ([]models.SentMessage, error) {
	if err := authorizeSelf(principal, username); err != nil {
		return nil, err
	}

	messages, err := s.reader.ListFrom(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list sent messages", "username", username, "err", err)
		return nil, err
	}
	if messages == nil {
		messages = []models.SentMessage{}
	}
	return messages, nil
}

// ListTo returns the inbound messages of username. Only the user themselves may list them.
func (s *MessageService) ListTo(ctx context.Context, principal, username string) ([]models.ReceivedMessage, error) {
	if err := authorizeSelf(principal, username); err != nil {
		return nil, err
	}

	messages, err := s.reader.ListTo(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list received messages", "username", username, "err", err)
		return nil, err
	}
	if messages == nil {
		messages = []models.ReceivedMessage{}
	}
	return messages, nil
}

func authorizeSelf(principal, username string) error {
	if principal == "" {
		return ErrUnauthenticated
	}
	if principal != username {
		return ErrForbidden
	}
	return nil
}

// publishEvent publishes a lifecycle event to Kafka. Failures are logged, never returned.
func (s *MessageService) publishEvent(ctx context.Context, eventType string, msg *models.Message) {
	log := logger.FromContext(ctx)

	if s.kafkaWriter == nil {
		log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType, "message_id", msg.ID)
		return
	}

	event := models.MessageEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		MessageID:    msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Timestamp:    time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorw("Failed to marshal message event", "event_id", event.EventID, "error", err)
		return
	}

	// keyed by message so events of one message stay ordered within a partition
	kmsg := kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.ID, 10)),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, kmsg); err != nil {
		log.Errorw("Failed to publish message event", "event_id", event.EventID, "type", eventType, "error", err)
		return
	}
	log.Infow("Message event published", "event_id", event.EventID, "type", eventType, "message_id", msg.ID)
}
