package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sifan077/CharacterVault/internal/app/model"
)

// EventPublisher announces committed characters to other replicas.
type EventPublisher interface {
	PublishCreated(ctx context.Context, c *model.Character) error
}

// JetStreamPublisher publishes character events to NATS JetStream.
type JetStreamPublisher struct {
	js nats.JetStreamContext
}

func NewJetStreamPublisher(js nats.JetStreamContext) *JetStreamPublisher {
	return &JetStreamPublisher{js: js}
}

func (p *JetStreamPublisher) PublishCreated(ctx context.Context, c *model.Character) error {
	data, err := json.Marshal(NewCreatedEvent(c))
	if err != nil {
		return err
	}
	_, err = p.js.Publish(model.CharacterCreatedSubject, data, nats.Context(ctx))
	return err
}

// NewCreatedEvent builds the event payload for a committed character.
func NewCreatedEvent(c *model.Character) model.CharacterCreatedEvent {
	return model.CharacterCreatedEvent{
		ID:          uuid.New().String(),
		CharacterID: c.ID,
		Name:        c.Name,
		URL:         c.URL,
		Timestamp:   time.Now().UTC(),
	}
}
