package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	issueservice "civiclink/internal/issues/service"
	issuestore "civiclink/internal/issues/store"
	ministryservice "civiclink/internal/ministry/service"
	ministrystore "civiclink/internal/ministry/store"
	ngoservice "civiclink/internal/ngo/service"
	ngostore "civiclink/internal/ngo/store"
	notifservice "civiclink/internal/notifications/service"
	notifstore "civiclink/internal/notifications/store"
	perfservice "civiclink/internal/performance/service"
	"civiclink/internal/platform/config"
	"civiclink/internal/platform/postgres"
	userservice "civiclink/internal/users/service"
	userstore "civiclink/internal/users/store"
)

// Each store serves more than one service; the interfaces below are the
// union of what those services need.
type (
	issueStore interface {
		issueservice.Store
		ministryservice.IssueReader
	}
	ministryStore interface {
		ministryservice.Store
		perfservice.MinistryStore
	}
	ngoStore interface {
		ngoservice.Store
		perfservice.NGOStore
	}
)

type stores struct {
	issues        issueStore
	ministries    ministryStore
	ngos          ngoStore
	users         userservice.Store
	notifications notifservice.Store
	db            *sql.DB
}

// openStores uses PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*stores, error) {
	if cfg.URL == "" {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return &stores{
			issues:        issuestore.NewInMemory(),
			ministries:    ministrystore.NewInMemory(),
			ngos:          ngostore.NewInMemory(),
			users:         userstore.NewInMemory(),
			notifications: notifstore.NewInMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.InfoContext(ctx, "postgres stores ready")
	return &stores{
		issues:        issuestore.NewPostgres(db),
		ministries:    ministrystore.NewPostgres(db),
		ngos:          ngostore.NewPostgres(db),
		users:         userstore.NewPostgres(db),
		notifications: notifstore.NewPostgres(db),
		db:            db,
	}, nil
}

func (s *stores) health(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *stores) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}
