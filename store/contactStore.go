package store

import (
	"context"
	"fmt"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContactStore reads and writes the "contactMessages" collection.
type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus) (*models.ContactMessage, error)
}

type MongoContactStore struct {
	messages *mongo.Collection
}

func NewMongoContactStore(db *mongo.Database) *MongoContactStore {
	return &MongoContactStore{messages: db.Collection("contactMessages")}
}

func (s *MongoContactStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

func (s *MongoContactStore) List(ctx context.Context) ([]models.ContactMessage, error) {
	cursor, err := s.messages.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find contact messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.ContactMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode contact messages: %w", err)
	}
	return messages, nil
}

func (s *MongoContactStore) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) (*models.ContactMessage, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var msg models.ContactMessage
	err = s.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&msg)
	if err != nil {
		return nil, notFound(err, "update contact message")
	}
	return &msg, nil
}
