// Package docstore connects to the MongoDB document store and prepares the
// collections used by the API.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the Mongo repositories.
const (
	UsersCollection    = "users"
	SessionsCollection = "oauth_sessions"
	ContactsCollection = "contacts"
	NotesCollection    = "notes"
)

// NewMongo connects to uri, verifies the primary is reachable and returns the
// named database together with a disconnect function.
func NewMongo(ctx context.Context, uri, database string) (*mongo.Database, func(context.Context) error, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(database), client.Disconnect, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (provider, providerId) index backs first-login races and the TTL index lets
// the server expire abandoned OAuth handoff sessions on its own.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "providerId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_provider_identity"),
	})
	if err != nil {
		return fmt.Errorf("docstore: users index: %w", err)
	}

	_, err = db.Collection(SessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("oauth_sessions_ttl"),
	})
	if err != nil {
		return fmt.Errorf("docstore: sessions index: %w", err)
	}

	return nil
}
