package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MillionaireMaker/internal/domain/models"
	domrepo "MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/internal/services/profile"
	pkgkafka "MillionaireMaker/pkg/kafka"
	applogger "MillionaireMaker/pkg/logger"
	"MillionaireMaker/pkg/util"
)

// KafkaDrawsHandler consumes published draw results, stores them and drops
// the game's cached profile.
type KafkaDrawsHandler struct {
	topic   string
	draws   domrepo.DrawRepository
	loader  *ProfileLoader
	metrics domrepo.Metrics
	l       *applogger.Logger
}

var _ pkgkafka.MessageHandler = (*KafkaDrawsHandler)(nil)

func NewKafkaDrawsHandler(topic string, draws domrepo.DrawRepository, loader *ProfileLoader, metrics domrepo.Metrics) *KafkaDrawsHandler {
	return &KafkaDrawsHandler{topic: topic, draws: draws, loader: loader, metrics: metrics, l: applogger.Nop()}
}

// SetLogger sets optional logger.
func (h *KafkaDrawsHandler) SetLogger(l *applogger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *KafkaDrawsHandler) Topic() string { return h.topic }

// incoming message schema: {game, date, main, grand, bonus}
func (h *KafkaDrawsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Game  string `json:"game"`
		Date  string `json:"date"`
		Main  []int  `json:"main"`
		Grand *int   `json:"grand"`
		Bonus *int   `json:"bonus"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode draw: %w", err)
	}

	game, err := models.LookupGame(m.Game)
	if err != nil {
		h.metrics.RecordError("consumer_validate")
		return err
	}
	date, err := util.ParseDate(m.Date)
	if err != nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("draw date: %w", err)
	}
	valid := profile.ValidDraws(game, []models.Draw{{Date: date, Main: m.Main, Grand: m.Grand, Bonus: m.Bonus}})
	if len(valid) == 0 {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("invalid %s draw on %s: %v", game.ID, date.Format(time.DateOnly), m.Main)
	}
	draw := valid[0]
	if game.HasGrand() && draw.Grand == nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("%s draw on %s has no grand number", game.ID, date.Format(time.DateOnly))
	}

	start := time.Now()
	err = h.draws.Upsert(ctx, game, draw)
	h.metrics.RecordLatency("draw_upsert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	if err := h.loader.Invalidate(ctx, game.ID); err != nil {
		h.metrics.RecordError("profile_cache")
		h.l.Warn("profile invalidation failed", applogger.String("game", string(game.ID)), applogger.Error(err))
	}
	h.metrics.RecordDrawIngested(string(game.ID))
	h.l.Info("draw ingested",
		applogger.String("game", string(game.ID)),
		applogger.String("date", date.Format(time.DateOnly)),
	)
	return nil
}
