package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// appName shows up in the mongod connection log and in currentOp output,
	// which keeps the API's connections distinguishable from one-off scripts.
	appName = "mealbridge-api"

	defaultTimeout = 10 * time.Second
	maxPoolSize    = 50
)

// Config holds the connection settings for the donation store.
type Config struct {
	URI      string
	Database string
	// Timeout bounds both the initial dial and the verification ping.
	// Defaults to defaultTimeout when zero.
	Timeout time.Duration
}

// Connect dials MongoDB, verifies the primary is reachable, and returns the
// client together with the database the donation and user collections live
// in. The reserve path depends on single-document conditional updates, so
// the ping insists on a primary rather than any reachable node.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetMaxPoolSize(maxPoolSize).
		SetServerSelectionTimeout(timeout)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(dialCtx)
		return nil, nil, fmt.Errorf("mongodb primary unreachable: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
