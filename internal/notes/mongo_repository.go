package notes

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

// MongoRepository persists notes in the notes collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repository over db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(docstore.NotesCollection)}
}

type noteDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Content     string             `bson:"content"`
	Author      string             `bson:"author"`
	Tags        []string           `bson:"tags"`
	IsImportant bool               `bson:"isImportant"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d noteDocument) toNote() Note {
	note := Note{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Content:     d.Content,
		Author:      d.Author,
		Tags:        d.Tags,
		IsImportant: d.IsImportant,
		Priority:    Priority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		note.DueDate = &due
	}
	return note
}

func toNoteDocument(id primitive.ObjectID, n Note) noteDocument {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteDocument{
		ID:          id,
		Title:       n.Title,
		Content:     n.Content,
		Author:      n.Author,
		Tags:        tags,
		IsImportant: n.IsImportant,
		DueDate:     n.DueDate,
		Priority:    string(n.Priority),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Find returns all notes in insertion order.
func (r *MongoRepository) Find(ctx context.Context) ([]Note, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, doc.toNote())
	}
	return notes, nil
}

// FindByID fetches a single note.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (Note, error) {
	oid, err := objectID(id)
	if err != nil {
		return Note{}, err
	}

	var doc noteDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	return doc.toNote(), nil
}

// Create inserts note under a new ObjectID.
func (r *MongoRepository) Create(ctx context.Context, note Note) (Note, error) {
	doc := toNoteDocument(primitive.NewObjectID(), note)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return Note{}, err
	}
	return doc.toNote(), nil
}

// UpdateByID replaces the stored document body and returns the result.
func (r *MongoRepository) UpdateByID(ctx context.Context, id string, note Note) (Note, error) {
	oid, err := objectID(id)
	if err != nil {
		return Note{}, err
	}

	doc := toNoteDocument(oid, note)
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var stored noteDocument
	if err := r.coll.FindOneAndReplace(ctx, bson.M{"_id": oid}, doc, opts).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	return stored.toNote(), nil
}

// DeleteByID removes a note.
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

var _ Repository = (*MongoRepository)(nil)
