package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"registration-service/internal/model"
)

const SubjectUserCreated = "user.created"

type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user *model.User) error
	Close()
}

type UserCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserCreatedEvent(user *model.User) UserCreatedEvent {
	return UserCreatedEvent{
		EventID:    uuid.New(),
		EventType:  SubjectUserCreated,
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		OccurredAt: user.CreatedAt,
	}
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("registration-service"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) PublishUserCreated(ctx context.Context, user *model.User) error {
	eventJSON, err := json.Marshal(NewUserCreatedEvent(user))
	if err != nil {
		return err
	}

	if err := p.conn.Publish(SubjectUserCreated, eventJSON); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published event to NATS", "subject", SubjectUserCreated, "user_id", user.ID)

	return nil
}

func (p *NatsPublisher) Close() {
	p.conn.Drain()
}

// NoopPublisher is used when NATS_URL is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserCreated(context.Context, *model.User) error { return nil }

func (NoopPublisher) Close() {}
