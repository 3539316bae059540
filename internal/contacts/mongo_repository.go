package contacts

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contactbook/internal/platform/docstore"
)

// MongoRepository persists contacts in the contacts collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repository over db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(docstore.ContactsCollection)}
}

type contactDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	FirstName     string             `bson:"firstName"`
	LastName      string             `bson:"lastName"`
	Email         string             `bson:"email"`
	FavoriteColor string             `bson:"favoriteColor"`
	Birthday      time.Time          `bson:"birthday"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d contactDocument) toContact() Contact {
	return Contact{
		ID:            d.ID.Hex(),
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		FavoriteColor: d.FavoriteColor,
		Birthday:      d.Birthday.UTC(),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Find returns all contacts in insertion order.
func (r *MongoRepository) Find(ctx context.Context) ([]Contact, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.toContact())
	}
	return contacts, nil
}

// FindByID fetches a single contact.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (Contact, error) {
	oid, err := objectID(id)
	if err != nil {
		return Contact{}, err
	}

	var doc contactDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return doc.toContact(), nil
}

// Create inserts contact under a new ObjectID.
func (r *MongoRepository) Create(ctx context.Context, contact Contact) (Contact, error) {
	doc := toContactDocument(primitive.NewObjectID(), contact)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return Contact{}, err
	}
	return doc.toContact(), nil
}

// UpdateByID replaces the mutable fields and returns the stored document.
func (r *MongoRepository) UpdateByID(ctx context.Context, id string, contact Contact) (Contact, error) {
	oid, err := objectID(id)
	if err != nil {
		return Contact{}, err
	}

	update := bson.M{"$set": bson.M{
		"firstName":     contact.FirstName,
		"lastName":      contact.LastName,
		"email":         contact.Email,
		"favoriteColor": contact.FavoriteColor,
		"birthday":      contact.Birthday,
		"updatedAt":     contact.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc contactDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return doc.toContact(), nil
}

// DeleteByID removes a contact.
func (r *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toContactDocument(id primitive.ObjectID, c Contact) contactDocument {
	return contactDocument{
		ID:            id,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		FavoriteColor: c.FavoriteColor,
		Birthday:      c.Birthday,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

var _ Repository = (*MongoRepository)(nil)
