// Package daemon initializes and runs the sync daemon: it wires the
// conversation store, the object store, the NATS subjects, and the
// share engine together, and handles graceful shutdown.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/dkoval/mailshare/internal/attach"
	"github.com/dkoval/mailshare/internal/bus"
	"github.com/dkoval/mailshare/internal/config"
	"github.com/dkoval/mailshare/internal/logging"
	"github.com/dkoval/mailshare/internal/metaq"
	"github.com/dkoval/mailshare/internal/models"
	"github.com/dkoval/mailshare/internal/quote"
	"github.com/dkoval/mailshare/internal/remote"
	"github.com/dkoval/mailshare/internal/resolve"
	"github.com/dkoval/mailshare/internal/share"
	"github.com/dkoval/mailshare/internal/store"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	scheduler *share.Scheduler
	changes   *bus.ChangeHandler
	shares    *bus.ShareHandler
	locates   *bus.LocateHandler
	consumer  *metaq.Consumer
	closeDB   func() error
}

func NewApp(ctx context.Context, cfg *config.Config, nc *nats.Conn) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate error: %w", err)
	}
	st := store.NewPostgresStore(db)

	cache, err := attach.NewCache(cfg.AttachmentCacheDir)
	if err != nil {
		return nil, fmt.Errorf("attachment cache init error: %w", err)
	}

	objects, err := remote.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	identity := models.Identity{
		FirstName: cfg.SharerFirstName,
		LastName:  cfg.SharerLastName,
		Email:     cfg.SharerEmail,
	}
	stripper := quote.New(quote.Options{KeepIfWholeBodyIsQuote: true})
	uploader := share.NewUploader(cache, objects, logger)
	sink := metaq.NewNATSSink(nc, cfg.NatsSubjectMeta)
	publisher := share.NewPublisher(st, st, uploader, objects, sink, stripper, identity, cfg.MetaKey, logger)
	scheduler := share.NewScheduler(publisher, cfg.DebounceDelay, logger)

	resolver := resolve.NewResolver(st, logger)
	locates := bus.NewLocateHandler(resolver,
		func(ctx context.Context, conv *models.Conversation) {
			logger.Info(ctx, "locator resolved", "conversation", conv.ID, "subject", conv.Subject)
		},
		func(ctx context.Context, subject string) {
			logger.Warn(ctx, "locator did not match any conversation", "subject", subject)
		},
		logger)

	return &App{
		config:    cfg,
		logger:    logger,
		scheduler: scheduler,
		changes:   bus.NewChangeHandler(st, st, scheduler, cfg.MetaKey, logger),
		shares:    bus.NewShareHandler(st, publisher, logger),
		locates:   locates,
		consumer:  metaq.NewConsumer(st, logger),
		closeDB:   db.Close,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run subscribes to the NATS subjects and blocks until the context is
// cancelled or a signal arrives. On the way out it flushes the
// scheduler once so an open debounce window is not silently dropped.
func (app *App) Run(ctx context.Context, nc *nats.Conn) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting sync daemon",
		"changes", app.config.NatsSubjectChanges,
		"share", app.config.NatsSubjectShare,
		"locate", app.config.NatsSubjectLocate,
		"meta", app.config.NatsSubjectMeta)

	app.initSignalHandler(cancelFunc)

	subs := make([]*nats.Subscription, 0, 4)
	for _, binding := range []struct {
		subject string
		handler func(ctx context.Context, data []byte)
	}{
		{app.config.NatsSubjectChanges, app.changes.Handle},
		{app.config.NatsSubjectShare, app.shares.Handle},
		{app.config.NatsSubjectLocate, app.locates.Handle},
		{app.config.NatsSubjectMeta, app.consumer.Handle},
	} {
		sub, err := bus.Subscribe(nc, binding.subject, binding.handler)
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", binding.subject, err)
		}
		subs = append(subs, sub)
	}

	<-ctx.Done()
	app.logger.Info(ctx, "shutting down")

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			app.logger.Warn(ctx, "unsubscribe failed", "error", err)
		}
	}

	app.scheduler.FlushNow(context.Background())

	if err := app.closeDB(); err != nil {
		app.logger.Warn(ctx, "closing database failed", "error", err)
	}
	return nil
}
