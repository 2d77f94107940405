package main

import (
	"context"
	"fmt"

	"yelpcamp/internal/audit"
	"yelpcamp/internal/auth"
	"yelpcamp/internal/config"
	"yelpcamp/internal/persistence"
	"yelpcamp/internal/services"
	"yelpcamp/internal/store/mongostore"
	"yelpcamp/internal/telemetry"
)

// base holds what both serve and seed need: config, logger, database and the user service.
type base struct {
	cfg         *config.Properties
	log         telemetry.Logger
	db          *persistence.Client
	campgrounds *mongostore.Campgrounds
	reviews     *mongostore.Reviews
	users       *mongostore.Users
	audit       audit.Recorder
	closers     []func(context.Context) error
}

func bootstrap(ctx context.Context) (*base, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := telemetry.NewLogger(cfg.LogLevel, !cfg.Production())
	if err != nil {
		return nil, err
	}
	b := &base{cfg: cfg, log: log}

	db, err := persistence.Open(ctx, persistence.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		DefaultTimeout: cfg.Mongo.OpTimeout,
	})
	if err != nil {
		return nil, err
	}
	b.db = db
	b.closers = append(b.closers, db.Close)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		b.close(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	b.campgrounds = mongostore.NewCampgrounds(db)
	b.reviews = mongostore.NewReviews(db)
	b.users = mongostore.NewUsers(db)

	rec, closer, err := audit.Open(cfg.Security.AuditLog)
	if err != nil {
		b.close(ctx)
		return nil, err
	}
	b.audit = rec
	b.closers = append(b.closers, func(context.Context) error { return closer.Close() })
	log.Info("database connected", "database", cfg.Mongo.Database)
	return b, nil
}

func (b *base) userService() *services.Users {
	return services.NewUsers(b.users, auth.NewPasswordHasher(), b.audit, b.log)
}

// close runs the closers in reverse order.
func (b *base) close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			b.log.Warn("close failed", "err", err)
		}
	}
	_ = b.log.Sync()
}
