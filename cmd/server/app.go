package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rpggio/freightline/internal/config"
	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/mcp"
	"github.com/rpggio/freightline/internal/notify"
	redisstore "github.com/rpggio/freightline/internal/redis"
	"github.com/rpggio/freightline/internal/sqlite"
)

// app is the assembled service graph.
type app struct {
	db       *sqlite.DB
	actors   *sqlite.ActorRepository
	policy   access.Policy
	audit    *audit.Service
	services mcp.Services
	closers  []func() error
}

// openDB opens and migrates the configured database.
func openDB(cfg config.Config) (*sqlite.DB, error) {
	if err := ensureParentDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{
		db:      db,
		actors:  sqlite.NewActorRepository(db),
		policy:  access.DefaultPolicy(),
		closers: []func() error{db.Close},
	}

	counters, err := a.counterStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	sender, err := a.notificationSender(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	templates, err := documentTemplates(cfg.Jobs.Documents)
	if err != nil {
		a.Close()
		return nil, err
	}

	dispatcher := notify.NewDispatcher(sender, logger)
	allocator := sequence.NewService(counters, logger)
	a.audit = audit.NewService(sqlite.NewAuditRepository(db), logger)
	jobSvc := job.NewService(sqlite.NewJobRepository(db), allocator, a.policy, a.audit, dispatcher,
		job.Options{DefaultMode: cfg.Jobs.DefaultMode, Templates: templates}, logger)
	quoteSvc := quote.NewService(sqlite.NewQuoteRepository(db), allocator, jobSvc, a.policy, a.audit, cfg.Jobs.DefaultMode, logger)
	editSvc := editgrant.NewService(a.policy, a.audit, editgrant.Options{
		Notifier:      dispatcher,
		Directory:     a.actors,
		ApproverEmail: cfg.Notify.ApproverEmail,
	}, logger)
	editSvc.Register(audit.EntityJob, jobSvc.EditTarget())
	editSvc.Register(audit.EntityQuote, quoteSvc.EditTarget())

	a.services = mcp.Services{
		Allocator: allocator,
		Jobs:      jobSvc,
		Quotes:    quoteSvc,
		Edits:     editSvc,
		Audit:     a.audit,
	}
	return a, nil
}

func (a *app) counterStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (sequence.Store, error) {
	if !strings.EqualFold(cfg.Sequence.Backend, "redis") {
		return sqlite.NewCounterRepository(a.db), nil
	}
	client, err := redisstore.NewClient(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	logger.Info("sequence backend", "backend", "redis", "addr", cfg.Redis.Addr)
	return redisstore.NewCounterStore(client, ""), nil
}

func (a *app) notificationSender(cfg config.Config, logger *slog.Logger) (notify.Sender, error) {
	if !strings.EqualFold(cfg.Notify.Driver, "amqp") {
		return notify.NewLogSender(logger), nil
	}
	conn, err := amqp.Dial(cfg.Notify.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect to amqp broker: %w", err)
	}
	a.closers = append(a.closers, conn.Close)
	sender, err := notify.NewAMQPSender(conn, cfg.Notify.Exchange)
	if err != nil {
		return nil, err
	}
	logger.Info("notification driver", "driver", "amqp", "exchange", cfg.Notify.Exchange)
	return sender, nil
}

// defaultActor is the actor used when requests are not authenticated.
func defaultActor(cfg config.Config) (access.Actor, error) {
	role, err := access.ParseRole(cfg.Auth.DefaultRole)
	if err != nil {
		return access.Actor{}, err
	}
	return access.Actor{ID: cfg.Auth.DefaultActor, Name: cfg.Auth.DefaultActor, Role: role}, nil
}

// documentTemplates overlays configured document checklists on the defaults.
func documentTemplates(overrides map[string][]string) (map[sequence.Mode][]string, error) {
	templates := job.DefaultTemplates()
	for raw, docs := range overrides {
		mode, err := sequence.ParseMode(raw)
		if err != nil {
			return nil, fmt.Errorf("jobs.documents: %w", err)
		}
		templates[mode] = docs
	}
	return templates, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
