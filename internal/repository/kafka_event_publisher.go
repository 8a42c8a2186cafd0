package repository

import (
	"context"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
)

var _ drepo.EventPublisher = (*KafkaEventPublisher)(nil)

// KeyedPublisher is the producer surface the event publisher needs.
type KeyedPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher writes run lifecycle events keyed by run ID. Complete
// events carry a per-path summary instead of the full ensemble.
type KafkaEventPublisher struct {
	producer KeyedPublisher
	topic    string
	now      func() time.Time
}

func NewKafkaEventPublisher(p KeyedPublisher, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic, now: time.Now}
}

// LifecycleMessage is the wire shape on the events topic.
type LifecycleMessage struct {
	Type      models.EventType `json:"type"`
	RunID     string           `json:"runId"`
	Progress  int              `json:"progress,omitempty"`
	Stats     *models.Stats    `json:"stats,omitempty"`
	Summary   []PathSummary    `json:"summary,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PathSummary condenses one trajectory.
type PathSummary struct {
	FinalValue  float64 `json:"finalValue"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, ev models.Event) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.RunID), p.toMessage(ev))
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaEventPublisher) toMessage(ev models.Event) LifecycleMessage {
	msg := LifecycleMessage{
		Type:      ev.Type,
		RunID:     ev.RunID,
		Progress:  ev.Progress,
		Stats:     ev.Stats,
		Message:   ev.Message,
		Timestamp: p.now().UTC(),
	}
	if len(ev.Results) > 0 {
		msg.Summary = make([]PathSummary, len(ev.Results))
		for i, path := range ev.Results {
			msg.Summary[i] = PathSummary{FinalValue: path.FinalValue(), MaxDrawdown: path.MaxDrawdown}
		}
	}
	return msg
}
