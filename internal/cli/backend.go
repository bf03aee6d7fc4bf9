package cli

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/locallibrary/locallibrary/internal/app"
	"github.com/locallibrary/locallibrary/internal/auth"
	"github.com/locallibrary/locallibrary/internal/platform/db"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/jobs"
)

// ServiceBackend connects to the same Postgres and Redis as the server.
type ServiceBackend struct {
	cfg       *app.Config
	pool      *pgxpool.Pool
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewServiceBackend returns a backend that dials lazily.
func NewServiceBackend(cfg *app.Config) *ServiceBackend {
	return &ServiceBackend{cfg: cfg}
}

func (b *ServiceBackend) Migrator() (Migrator, error) {
	m, err := db.NewMigrator(b.cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *ServiceBackend) Roles(ctx context.Context) (RoleStore, error) {
	pool, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	return rbac.NewService(pool), nil
}

func (b *ServiceBackend) Users(ctx context.Context) (UserFinder, error) {
	pool, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewRepository(pool), nil
}

func (b *ServiceBackend) Jobs() (JobQueue, error) {
	if b.client == nil {
		opts := asynq.RedisClientOpt{Addr: b.cfg.RedisAddr}
		client, err := jobs.NewClient(opts)
		if err != nil {
			return nil, err
		}
		b.client = client
		b.inspector = asynq.NewInspector(opts)
	}
	return jobQueue{client: b.client, inspector: b.inspector}, nil
}

// Close releases whatever was opened.
func (b *ServiceBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.client != nil {
		_ = b.client.Close()
	}
	if b.inspector != nil {
		_ = b.inspector.Close()
	}
}

func (b *ServiceBackend) dial(ctx context.Context) (*pgxpool.Pool, error) {
	if b.pool != nil {
		return b.pool, nil
	}
	pool, err := db.New(ctx, b.cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	b.pool = pool
	return pool, nil
}

type jobQueue struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

func (q jobQueue) EnqueueDueReminder(ctx context.Context, payload jobs.DueReminderPayload) (*asynq.TaskInfo, error) {
	return q.client.EnqueueDueReminder(ctx, payload)
}

func (q jobQueue) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return q.inspector.GetQueueInfo(queue)
}
