// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/config"
	"github.com/tomtom215/dailyfacts/internal/metrics"
)

// Outcome is the result a delivery event reports.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

// Event describes one delivery attempt.
type Event struct {
	ID             string    `json:"id"`
	Outcome        Outcome   `json:"outcome"`
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	ItemID         string    `json:"item_id,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	RetryCount     int       `json:"retry_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher publishes delivery events.
type Publisher struct {
	prefix     string
	publisher  message.Publisher
	subscriber message.Subscriber // set for the in-process transport only
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher for cfg. An empty NATS URL selects the
// in-process transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(cfg *config.EventsConfig, logger zerolog.Logger) (*Publisher, error) {
	logger = logger.With().Str("component", "events").Logger()
	adapter := NewLoggerAdapter(logger)

	prefix := cfg.Topic
	if prefix == "" {
		prefix = "dailyfacts.notification"
	}
	p := &Publisher{prefix: prefix, logger: logger}

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, adapter)
		p.publisher = ch
		p.subscriber = ch
		return p, nil
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	p.publisher = pub
	return p, nil
}

// Topic returns the topic for an outcome.
func (p *Publisher) Topic(o Outcome) string {
	return p.prefix + "." + string(o)
}

// Publish sends one event. Missing ids and timestamps are filled in.
func (p *Publisher) Publish(_ context.Context, ev Event) (err error) {
	defer func() { metrics.RecordEventPublish(err) }()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(ev.ID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.ID)
	msg.Metadata.Set("user_id", ev.UserID)
	msg.Metadata.Set("outcome", string(ev.Outcome))

	if err := p.publisher.Publish(p.Topic(ev.Outcome), msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Outcome, err)
	}
	return nil
}

// ErrSubscribeUnsupported is returned by Subscribe on the NATS transport.
var ErrSubscribeUnsupported = errors.New("subscribe is only supported by the in-process transport")

// InProcess reports whether events stay inside this process.
func (p *Publisher) InProcess() bool {
	return p.subscriber != nil
}

// Subscribe returns the in-process message stream for an outcome. It
// fails for the NATS transport, whose consumers live out of process.
func (p *Publisher) Subscribe(ctx context.Context, o Outcome) (<-chan *message.Message, error) {
	if p.subscriber == nil {
		return nil, ErrSubscribeUnsupported
	}
	return p.subscriber.Subscribe(ctx, p.Topic(o))
}

// Decode parses an event from a message payload.
func Decode(msg *message.Message) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}

// Close releases the transport.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// NewLoggerAdapter adapts zerolog to Watermill's logger interface.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoggerAdapter(logger zerolog.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger zerolog.Logger
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Trace().Fields(map[string]any(fields)).Msg(msg)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{logger: a.logger.With().Fields(map[string]any(fields)).Logger()}
}
