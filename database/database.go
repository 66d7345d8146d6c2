package database

import (
	"context"
	"fmt"
	"time"

	"foundersnexus/logging"
	"foundersnexus/store"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Roles             = "roles"
	Users             = "users"
	Entrepreneurs     = "entrepreneurs"
	Investors         = "investors"
	Startups          = "startups"
	Posts             = "posts"
	Comments          = "comments"
	PitchDecks        = "pitchdecks"
	PushSubscriptions = "push_subscriptions"
)

type Config struct {
	URI      string
	Name     string
	Attempts int
	Backoff  time.Duration
}

// Connect opens a client, retrying failed attempts, and pings the server.
func Connect(ctx context.Context, cfg Config, log logging.Logger) (*mongo.Client, *mongo.Database, error) {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}

	var (
		client  *mongo.Client
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(cfg.Attempts-1), retry.NewConstant(cfg.Backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		c, err := connectOnce(ctx, cfg.URI)
		if err != nil {
			log.Warn(ctx, "MongoDB connection attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB after %d attempts: %w", attempt, err)
	}
	log.Info(ctx, "connected to MongoDB", "database", cfg.Name, "attempt", attempt)
	return client, client.Database(cfg.Name), nil
}

func connectOnce(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func Disconnect(client *mongo.Client, log logging.Logger) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return err
	}

	log.Info(ctx, "disconnected from MongoDB")
	return nil
}

// Indexes lists the uniqueness constraints the engine relies on. The partial
// index on pitch decks turns a second concurrent activation into a
// duplicate-key error.
func Indexes() []store.Index {
	return []store.Index{
		{Collection: Roles, Name: "roles_name_unique", Fields: []string{"name"}, Unique: true},
		{Collection: Users, Name: "users_email_unique", Fields: []string{"email"}, Unique: true},
		{Collection: Entrepreneurs, Name: "entrepreneurs_user_unique", Fields: []string{"userId"}, Unique: true},
		{Collection: Investors, Name: "investors_user_unique", Fields: []string{"userId"}, Unique: true},
		{Collection: Comments, Name: "comments_post", Fields: []string{"postId"}},
		{Collection: Posts, Name: "posts_user", Fields: []string{"userId"}},
		{Collection: PitchDecks, Name: "pitchdecks_one_active_per_startup", Fields: []string{"startupId"}, Unique: true,
			Partial: store.Filter{"active": true}},
		{Collection: PushSubscriptions, Name: "push_subscriptions_user_unique", Fields: []string{"userId"}, Unique: true},
	}
}

// EnsureIndexes creates every index from Indexes on ix.
func EnsureIndexes(ctx context.Context, ix store.Indexer) error {
	for _, idx := range Indexes() {
		if err := ix.EnsureIndex(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
