// Package notifier consumes marketplace events from RabbitMQ and fans them
// out as notification rows and e-mails. Redeliveries are tolerated; a
// duplicate notification is noise rather than damage.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colabsdev/colabs-be/internal/notifier/domain"
	"github.com/colabsdev/colabs-be/internal/notifier/storage"
	"github.com/colabsdev/colabs-be/shared/postgresql"
	"github.com/colabsdev/colabs-be/shared/rabbitmq"
)

// Config holds notifier configuration
type Config struct {
	Logger        *slog.Logger
	DBClient      *postgresql.Client
	RabbitClient  *rabbitmq.Client
	Mailer        Mailer
	FrontendURL   string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	MaxEvents     int
	EventTimeout  time.Duration
}

// Notifier is the event-consuming notification dispatcher
type Notifier struct {
	logger        *slog.Logger
	storage       *storage.Storage
	rabbitClient  *rabbitmq.Client
	mailer        Mailer
	frontendURL   string
	queueName     string
	concurrency   int
	prefetchCount int
	eventTimeout  time.Duration
	notifierID    string
	eventsChan    chan *domain.EventMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewNotifier creates a new notifier instance
func NewNotifier(cfg *Config) *Notifier {
	return &Notifier{
		logger:        cfg.Logger,
		storage:       storage.NewStorage(cfg.DBClient.GetDB(), cfg.Logger),
		rabbitClient:  cfg.RabbitClient,
		mailer:        cfg.Mailer,
		frontendURL:   cfg.FrontendURL,
		queueName:     cfg.QueueName,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		eventTimeout:  cfg.EventTimeout,
		notifierID:    "notifier-" + uuid.New().String(),
		eventsChan:    make(chan *domain.EventMessage, cfg.MaxEvents),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until the context is canceled.
func (n *Notifier) Start(ctx context.Context) error {
	n.logger.Info("Starting notifier",
		slog.String("notifier_id", n.notifierID),
		slog.Int("concurrency", n.concurrency),
		slog.Duration("event_timeout", n.eventTimeout),
	)

	deliveries, err := n.setupConsumer(ctx)
	if err != nil {
		return err
	}

	n.spawnWorkerPool(ctx)
	n.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the notifier
func (n *Notifier) Stop() {
	n.logger.Info("Stopping notifier...")
	close(n.stopChan)
	n.wg.Wait()
	n.logger.Info("Notifier stopped")
}
