package service

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/CharacterVault/internal/app/model"
	natsclient "github.com/sifan077/CharacterVault/internal/infra/nats"
	"go.uber.org/zap"
)

const consumerPrefix = "charactervault-ids-"

// EventConsumer feeds ids created by other replicas into the local id filter.
type EventConsumer struct {
	js      nats.JetStreamContext
	logger  *zap.Logger
	filter  *IDFilter
	durable string
	sub     *nats.Subscription
}

// NewEventConsumer builds a consumer under the given durable name. Each
// replica needs its own name; an empty one falls back to ConsumerName.
func NewEventConsumer(js nats.JetStreamContext, logger *zap.Logger, filter *IDFilter, durable string) *EventConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if durable == "" {
		durable = ConsumerName()
	}
	return &EventConsumer{js: js, logger: logger, filter: filter, durable: durable}
}

// ConsumerName derives a per-host durable name. JetStream names may not
// contain '.', '*', '>' or whitespace.
func ConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(".*> \t/\\", r) {
			return '-'
		}
		return r
	}, host)
	return consumerPrefix + clean
}

func (c *EventConsumer) Durable() string { return c.durable }

// Start ensures the stream exists and subscribes with a durable consumer that
// replays the whole stream on first use, so no id published before the
// subscription was made is skipped.
func (c *EventConsumer) Start() error {
	if err := natsclient.EnsureStream(c.js, model.CharacterStreamName,
		[]string{model.CharacterCreatedSubject}, model.CharacterStreamMaxBytes); err != nil {
		return err
	}

	sub, err := c.js.Subscribe(model.CharacterCreatedSubject, c.handle,
		nats.Durable(c.durable),
		nats.DeliverAll(),
		nats.ManualAck(),
		nats.AckExplicit(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.CharacterCreatedSubject, err)
	}
	c.sub = sub
	return nil
}

// Stop removes the subscription.
func (c *EventConsumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}

func (c *EventConsumer) handle(msg *nats.Msg) {
	event, err := c.apply(msg.Data)
	if err != nil {
		c.logger.Error("failed to decode character event", zap.Error(err))
		_ = msg.Term()
		return
	}
	c.logger.Debug("character event applied",
		zap.String("event_id", event.ID),
		zap.Int64("character_id", event.CharacterID))
	_ = msg.Ack()
}

func (c *EventConsumer) apply(data []byte) (*model.CharacterCreatedEvent, error) {
	var event model.CharacterCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.CharacterID <= 0 {
		return nil, fmt.Errorf("character event %q has no character id", event.ID)
	}
	c.filter.Add(event.CharacterID)
	return &event, nil
}
