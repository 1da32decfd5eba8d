package database

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/config"
)

var (
	mu sync.Mutex
	db *mongo.Database
)

// Connect establishes the process-wide MongoDB handle. It is idempotent and
// serialized: the first caller dials while concurrent callers block on the
// same attempt and share its outcome. A failed attempt is not cached, so a
// later call may retry. The handle lives for the process lifetime; there is
// no teardown.
func Connect(ctx context.Context) (*mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	uri := config.GetEnv("MONGODB_URI", "")
	if uri == "" {
		return nil, apperr.Configuration("MONGODB_URI is not set")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperr.Connection("failed to connect to MongoDB", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, apperr.Connection("failed to ping MongoDB", err)
	}

	db = client.Database(config.GetEnv("MONGODB_DB", "loomline"))
	log.Info().Str("database", db.Name()).Msg("connected to MongoDB")
	return db, nil
}

// Collection returns a collection on the shared handle. Connect must have
// succeeded first.
func Collection(name string) *mongo.Collection {
	return db.Collection(name)
}
