package repository

import (
	"context"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
)

type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

type picksEvent struct {
	Game        models.GameID                `json:"game"`
	Generated   int                          `json:"generated"`
	Requested   int                          `json:"requested"`
	Picks       []models.CombinationResponse `json:"picks"`
	PublishedAt time.Time                    `json:"published_at"`
}

type reportEvent struct {
	Game        models.GameID `json:"game"`
	Kind        string        `json:"kind"`
	Report      interface{}   `json:"report"`
	PublishedAt time.Time     `json:"published_at"`
}

// KafkaPublisher publishes picks and report summaries keyed by game.
type KafkaPublisher struct {
	producer     producer
	picksTopic   string
	reportsTopic string
	now          func() time.Time
}

var _ repository.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(p producer, picksTopic, reportsTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, picksTopic: picksTopic, reportsTopic: reportsTopic, now: time.Now}
}

func (p *KafkaPublisher) PublishPicks(ctx context.Context, game models.GameID, batch models.BatchResult) error {
	picks := make([]models.CombinationResponse, len(batch.Picks))
	for i, c := range batch.Picks {
		picks[i] = models.NewCombinationResponse(c)
	}
	return p.producer.Publish(ctx, p.picksTopic, []byte(game), picksEvent{
		Game:        game,
		Generated:   batch.Generated,
		Requested:   batch.Requested,
		Picks:       picks,
		PublishedAt: p.now().UTC(),
	})
}

func (p *KafkaPublisher) PublishReport(ctx context.Context, game models.GameID, kind string, report interface{}) error {
	return p.producer.Publish(ctx, p.reportsTopic, []byte(game), reportEvent{
		Game:        game,
		Kind:        kind,
		Report:      report,
		PublishedAt: p.now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops everything. Used when Kafka is disabled.
type NopPublisher struct{}

var _ repository.Publisher = NopPublisher{}

func (NopPublisher) PublishPicks(context.Context, models.GameID, models.BatchResult) error {
	return nil
}

func (NopPublisher) PublishReport(context.Context, models.GameID, string, interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
