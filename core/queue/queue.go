package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-gateway/core/config"
	"booking-gateway/core/constants"
	"booking-gateway/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer publishes background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any) error
	Close() error
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(cfg config.RedisConfig) Enqueuer {
	return &asynqEnqueuer{client: asynq.NewClient(redisOpt(cfg))}
}

func (q *asynqEnqueuer) Enqueue(ctx context.Context, taskType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	task := asynq.NewTask(taskType, data,
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		logger.Error("Queue:Enqueue:Error", "type", taskType, "error", err)
		return err
	}
	logger.Debug("Queue:Enqueue:Success", "type", taskType, "id", info.ID)
	return nil
}

func (q *asynqEnqueuer) Close() error { return q.client.Close() }

// Worker consumes tasks with the handlers registered on its mux.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisCfg config.RedisConfig, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{constants.QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Worker:TaskFailed", "type", task.Type(), "error", err)
		}),
	})
	return &Worker{server: srv, mux: asynq.NewServeMux()}
}

func (w *Worker) Handle(taskType string, fn func(ctx context.Context, payload []byte) error) {
	w.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return fn(ctx, t.Payload())
	})
}

func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	logger.Info("Queue:Worker:Started")
	return nil
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
