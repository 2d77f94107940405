package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client owns the process-lifetime database connection. Open it once, pass it
// to stores, and Close it on shutdown.
type Client struct {
	client         *mongo.Client
	db             *mongo.Database
	DefaultTimeout time.Duration
}

// Config captures connection settings.
type Config struct {
	URI            string
	Database       string
	DefaultTimeout time.Duration
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongo uri and database are required")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(20).
		SetMaxConnIdleTime(5 * time.Minute)
	cctx, cancel := withTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()
	mc, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := mc.Ping(cctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Client{client: mc, db: mc.Database(cfg.Database), DefaultTimeout: cfg.DefaultTimeout}, nil
}

// Collection returns a handle on the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Database exposes the underlying database for index management.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ctx derives an operation context bounded by the default timeout.
func (c *Client) Ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, c.DefaultTimeout)
}

// Close disconnects from the server.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
