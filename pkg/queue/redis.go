package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"MillionaireMaker/pkg/logger"
)

// RedisQueue is a list-backed job queue with a delayed-retry sorted set,
// a dead-letter list and per-job status records.
type RedisQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	client    *redis.Client
	jobs      map[string]Job
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	keyPrefix string
	newID     func() string
	now       func() time.Time
}

var _ QueueService = (*RedisQueue)(nil)

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets custom key prefix.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		if prefix != "" {
			r.keyPrefix = prefix
		}
	}
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(fn func() string) RedisQueueOption {
	return func(r *RedisQueue) { r.newID = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RedisQueueOption {
	return func(r *RedisQueue) { r.now = now }
}

// NewRedisQueue creates a new Redis queue.
func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, opts ...RedisQueueOption) *RedisQueue {
	if lgr == nil {
		lgr = logger.Nop()
	}
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}
	if config.ResultTTL <= 0 {
		config.ResultTTL = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	rq := &RedisQueue{
		logger:    lgr,
		config:    config,
		client:    client,
		jobs:      make(map[string]Job),
		ctx:       ctx,
		cancel:    cancel,
		keyPrefix: "mm:jobs",
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(rq)
	}
	return rq
}

// RegisterJob registers a job for its message type.
func (r *RedisQueue) RegisterJob(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Type()]; exists {
		r.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.logger.Debug("job registered", logger.String("job", job.Name()), logger.String("type", job.Type()))
}

// Start pings Redis and starts the workers and the retry processor.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.retryProcessor()

	r.logger.Info("redis queue started",
		logger.Int("workers", r.config.Workers),
		logger.String("prefix", r.keyPrefix))
	return nil
}

// Stop cancels running jobs and waits for workers.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.cancel()
	r.mu.Unlock()

	doneCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for queue workers: %w", ctx.Err())
	case <-doneCh:
		r.logger.Info("redis queue stopped")
		return nil
	}
}

// Enqueue stores a queued status record and pushes the message. It returns the job id.
func (r *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) (string, error) {
	r.mu.RLock()
	_, exists := r.jobs[msgType]
	r.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("no job registered for type: %s", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{
		ID:        r.newID(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: r.now().UTC(),
	}
	msgData, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	if err := r.saveStatus(ctx, Status{ID: msg.ID, Type: msgType, State: StateQueued}); err != nil {
		return "", err
	}
	if err := r.client.LPush(ctx, r.queueKey(), string(msgData)).Err(); err != nil {
		return "", fmt.Errorf("lpush: %w", err)
	}
	return msg.ID, nil
}

// Status returns the stored record of a job.
func (r *RedisQueue) Status(ctx context.Context, id string) (*Status, error) {
	data, err := r.client.Get(ctx, r.statusKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get status: %w", err)
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
			r.processNextMessage()
		}
	}
}

func (r *RedisQueue) processNextMessage() {
	result, err := r.client.BRPop(r.ctx, time.Second, r.queueKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("brpop error", logger.Error(err))
		select {
		case <-time.After(time.Second):
		case <-r.ctx.Done():
		}
		return
	}
	if len(result) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		r.logger.Error("unmarshal message", logger.Error(err))
		return
	}
	r.processMessage(msg)
}

func (r *RedisQueue) processMessage(msg Message) {
	r.mu.RLock()
	job, exists := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !exists {
		r.logger.Error("no job found", logger.String("type", msg.Type), logger.String("id", msg.ID))
		return
	}

	_ = r.saveStatus(r.ctx, Status{ID: msg.ID, Type: msg.Type, State: StateRunning, Attempts: msg.Attempts + 1})

	start := r.now()
	out, err := job.Handle(r.ctx, msg.Payload)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.logger.Warn("job cancelled", logger.String("id", msg.ID), logger.String("job", job.Name()))
			return
		}
		r.handleProcessingError(msg, job, err)
		return
	}

	result, err := json.Marshal(out)
	if err != nil {
		r.handleProcessingError(msg, job, fmt.Errorf("marshal result: %w", err))
		return
	}
	_ = r.saveStatus(r.ctx, Status{ID: msg.ID, Type: msg.Type, State: StateDone, Attempts: msg.Attempts + 1, Result: result})
	r.logger.Info("job done",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Duration("elapsed", r.now().Sub(start)))
}

func (r *RedisQueue) handleProcessingError(msg Message, job Job, err error) {
	r.logger.Error("job failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	msg.Attempts++
	if msg.Attempts <= r.config.RetryLimit {
		_ = r.saveStatus(r.ctx, Status{ID: msg.ID, Type: msg.Type, State: StateRetrying, Attempts: msg.Attempts, Error: err.Error()})
		r.scheduleRetry(msg, r.now().Add(r.config.RetryDelay))
		return
	}
	_ = r.saveStatus(r.ctx, Status{ID: msg.ID, Type: msg.Type, State: StateFailed, Attempts: msg.Attempts, Error: err.Error()})
	r.moveToDeadLetterQueue(msg)
}

func (r *RedisQueue) scheduleRetry(msg Message, retryTime time.Time) {
	msgData, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal retry", logger.Error(err))
		return
	}
	if err := r.client.ZAdd(r.ctx, r.retryKey(), redis.Z{
		Score:  float64(retryTime.Unix()),
		Member: string(msgData),
	}).Err(); err != nil {
		r.logger.Error("zadd retry", logger.Error(err))
	}
}

func (r *RedisQueue) moveToDeadLetterQueue(msg Message) {
	msgData, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal dlq", logger.Error(err))
		return
	}
	if err := r.client.LPush(r.ctx, r.deadLetterKey(), string(msgData)).Err(); err != nil {
		r.logger.Error("lpush dlq", logger.Error(err))
	}
}

func (r *RedisQueue) retryProcessor() {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.processRetryMessages()
		}
	}
}

func (r *RedisQueue) processRetryMessages() {
	due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(r.now().Unix(), 10),
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Error("fetch retry messages", logger.Error(err))
		}
		return
	}

	for _, msgData := range due {
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, r.retryKey(), msgData)
		pipe.LPush(r.ctx, r.queueKey(), msgData)
		if _, err := pipe.Exec(r.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Error("move retry to queue", logger.Error(err))
		}
	}
}

func (r *RedisQueue) saveStatus(ctx context.Context, st Status) error {
	st.UpdatedAt = r.now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := r.client.Set(ctx, r.statusKey(st.ID), string(data), r.config.ResultTTL).Err(); err != nil {
		r.logger.Warn("save job status", logger.String("id", st.ID), logger.Error(err))
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}

func (r *RedisQueue) queueKey() string {
	return r.keyPrefix + ":messages"
}

func (r *RedisQueue) retryKey() string {
	return r.keyPrefix + ":retry"
}

func (r *RedisQueue) deadLetterKey() string {
	return r.keyPrefix + ":dlq"
}

func (r *RedisQueue) statusKey(id string) string {
	return r.keyPrefix + ":status:" + id
}
