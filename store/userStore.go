package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore reads and writes the "users" collection.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRole(ctx context.Context, email string, role models.Role) error
	List(ctx context.Context) ([]models.User, error)
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type MongoUserStore struct {
	users *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err, "find user")
	}
	return &user, nil
}

func (s *MongoUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return s.updateOne(ctx, bson.M{"_id": oid}, bson.M{"password": passwordHash})
}

func (s *MongoUserStore) SetRole(ctx context.Context, email string, role models.Role) error {
	return s.updateOne(ctx, bson.M{"email": NormalizeEmail(email)}, bson.M{"role": role})
}

func (s *MongoUserStore) updateOne(ctx context.Context, filter, set bson.M) error {
	set["updatedAt"] = time.Now()
	result, err := s.users.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
