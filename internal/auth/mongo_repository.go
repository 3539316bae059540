package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"contactbook/internal/platform/docstore"
)

// MongoRepository implements UserRepository and SessionStore on MongoDB. It
// relies on the indexes created by docstore.EnsureIndexes.
type MongoRepository struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

// NewMongoRepository creates a MongoRepository over db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		users:    db.Collection(docstore.UsersCollection),
		sessions: db.Collection(docstore.SessionsCollection),
	}
}

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Provider    string             `bson:"provider"`
	ProviderID  string             `bson:"providerId"`
	DisplayName string             `bson:"displayName"`
	Email       string             `bson:"email"`
	Role        string             `bson:"role"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d userDocument) toUser() *User {
	return &User{
		ID:          d.ID.Hex(),
		Provider:    d.Provider,
		ProviderID:  d.ProviderID,
		DisplayName: d.DisplayName,
		Email:       d.Email,
		Role:        d.Role,
		CreatedAt:   d.CreatedAt,
	}
}

type sessionDocument struct {
	ID         string    `bson:"_id"`
	Provider   string    `bson:"provider"`
	State      string    `bson:"state"`
	RedirectTo string    `bson:"redirectTo"`
	CreatedAt  time.Time `bson:"createdAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

// FindUserByOAuth looks up a user by provider identity.
func (r *MongoRepository) FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error) {
	return r.findUser(ctx, bson.M{"provider": provider, "providerId": providerID})
}

// FindUserByID looks up a user by its ObjectID hex string.
func (r *MongoRepository) FindUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findUser(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toUser(), nil
}

// CreateUser inserts user. Duplicate key errors from the unique identity
// index are reported as ErrDuplicateIdentity.
func (r *MongoRepository) CreateUser(ctx context.Context, user User) (User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	doc := userDocument{
		ID:          primitive.NewObjectID(),
		Provider:    user.Provider,
		ProviderID:  user.ProviderID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, ErrDuplicateIdentity
		}
		return User{}, err
	}

	user.ID = doc.ID.Hex()
	return user, nil
}

// CreateSession inserts a handoff session. The TTL index on expiresAt lets
// the server drop sessions that are never completed.
func (r *MongoRepository) CreateSession(ctx context.Context, session HandoffSession) error {
	_, err := r.sessions.InsertOne(ctx, sessionDocument{
		ID:         session.ID,
		Provider:   session.Provider,
		State:      session.State,
		RedirectTo: session.RedirectTo,
		CreatedAt:  session.CreatedAt,
		ExpiresAt:  session.ExpiresAt,
	})
	return err
}

// TakeSession atomically removes and returns the session.
func (r *MongoRepository) TakeSession(ctx context.Context, id string) (*HandoffSession, error) {
	var doc sessionDocument
	if err := r.sessions.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &HandoffSession{
		ID:         doc.ID,
		Provider:   doc.Provider,
		State:      doc.State,
		RedirectTo: doc.RedirectTo,
		CreatedAt:  doc.CreatedAt,
		ExpiresAt:  doc.ExpiresAt,
	}, nil
}

// DeleteExpiredSessions removes sessions the TTL monitor has not yet reaped.
func (r *MongoRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.sessions.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

var (
	_ UserRepository = (*MongoRepository)(nil)
	_ SessionStore   = (*MongoRepository)(nil)
)
