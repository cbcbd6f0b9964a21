/*
Package broadcast delivers chat notification events through a River-backed
job queue. Publishing enqueues a job and returns immediately; a worker picks
the job up, records the event in broadcast_events and logs the delivery.

For worker counts, retry policy and tuning parameters, see queue_config.go.
*/
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog/log"
)

// MessageSavedArgs carries one chat notification through the queue
type MessageSavedArgs struct {
	EventID string `json:"event_id"`
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

// Kind returns the job kind for River
func (MessageSavedArgs) Kind() string {
	return "chat_broadcast"
}

// MessageSavedWorker delivers queued chat notifications
type MessageSavedWorker struct {
	river.WorkerDefaults[MessageSavedArgs]
	pool *pgxpool.Pool
}

// Work records the event so channel subscribers can pick it up
func (w *MessageSavedWorker) Work(ctx context.Context, job *river.Job[MessageSavedArgs]) error {
	args := job.Args

	_, err := w.pool.Exec(ctx, `
		INSERT INTO broadcast_events (event_id, event, channel, payload, emitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, args.EventID, args.Event, args.Channel, args.Payload, time.Now())

	if err != nil {
		return fmt.Errorf("failed to record broadcast event: %w", err)
	}

	log.Info().
		Str("event_id", args.EventID).
		Str("event", args.Event).
		Str("channel", args.Channel).
		Msg("broadcast event delivered")

	return nil
}

// Broadcaster manages the River client behind the publish API
type Broadcaster struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	config *QueueConfig
}

// NewBroadcaster creates a broadcaster with its own pgx pool on databaseURL
func NewBroadcaster(databaseURL string) (*Broadcaster, error) {
	config := GetQueueConfig()

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &MessageSavedWorker{pool: pool})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  config.RiverQueueConfig(),
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Broadcaster{
		client: client,
		pool:   pool,
		config: config,
	}, nil
}

// Start starts the broadcast workers
func (b *Broadcaster) Start(ctx context.Context) error {
	return b.client.Start(ctx)
}

// Stop stops the broadcast workers and releases the pool
func (b *Broadcaster) Stop(ctx context.Context) error {
	err := b.client.Stop(ctx)
	b.pool.Close()
	return err
}

// Publish enqueues one notification. The event is delivered asynchronously;
// a nil return only means the job was accepted.
func (b *Broadcaster) Publish(ctx context.Context, event, channel, payload string) error {
	args := MessageSavedArgs{
		EventID: uuid.NewString(),
		Event:   event,
		Channel: channel,
		Payload: payload,
	}

	_, err := b.client.Insert(ctx, args, nil)
	if err != nil {
		return fmt.Errorf("failed to queue broadcast job: %w", err)
	}

	return nil
}
