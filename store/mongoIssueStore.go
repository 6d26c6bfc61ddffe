package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxLikeAttempts = 3

// MongoIssueStore keeps issues in the "issues" collection.
type MongoIssueStore struct {
	issues *mongo.Collection
}

func NewMongoIssueStore(db *mongo.Database) *MongoIssueStore {
	return &MongoIssueStore{issues: db.Collection("issues")}
}

func (s *MongoIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	if _, err := s.issues.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *MongoIssueStore) Get(ctx context.Context, id string) (*models.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var issue models.Issue
	if err := s.issues.FindOne(ctx, bson.M{"_id": oid}).Decode(&issue); err != nil {
		return nil, notFound(err, "find issue")
	}
	return &issue, nil
}

func (s *MongoIssueStore) Query(ctx context.Context, filter IssueFilter, sort SortKey) ([]models.Issue, error) {
	return s.find(ctx, filter.BSON(), options.Find().SetSort(sort.bson()))
}

func (s *MongoIssueStore) RecentWithCoordinates(ctx context.Context, limit int) ([]models.Issue, error) {
	filter := bson.M{"location.coordinates": bson.M{"$exists": true, "$ne": nil}}
	findOptions := options.Find().
		SetSort(SortNewest.bson()).
		SetLimit(int64(limit))
	return s.find(ctx, filter, findOptions)
}

func (s *MongoIssueStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := s.issues.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (s *MongoIssueStore) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	return s.update(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
}

func (s *MongoIssueStore) AppendComment(ctx context.Context, id string, comment models.Comment) (*models.Issue, error) {
	return s.update(ctx, id, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (s *MongoIssueStore) Retweet(ctx context.Context, id, userID string) (*models.Issue, error) {
	return s.update(ctx, id, bson.M{
		"$addToSet": bson.M{"retweets": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (s *MongoIssueStore) update(ctx context.Context, id string, update bson.M) (*models.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var issue models.Issue
	if err := s.issues.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&issue); err != nil {
		return nil, notFound(err, "update issue")
	}
	return &issue, nil
}

// ToggleLike flips userID's membership in the like set. The add and remove
// branches are each conditional on the current membership, so the counter
// moves only when the set actually changes.
func (s *MongoIssueStore) ToggleLike(ctx context.Context, id, userID string) (LikeResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return LikeResult{}, err
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likesCount": 1})

	for attempt := 0; attempt < maxLikeAttempts; attempt++ {
		now := time.Now()
		var issue models.Issue

		err := s.issues.FindOneAndUpdate(ctx,
			bson.M{"_id": oid, "likes": bson.M{"$ne": userID}},
			bson.M{
				"$addToSet": bson.M{"likes": userID},
				"$inc":      bson.M{"likesCount": 1},
				"$set":      bson.M{"updatedAt": now},
			}, opts).Decode(&issue)
		if err == nil {
			return LikeResult{Liked: true, LikesCount: issue.LikesCount}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return LikeResult{}, fmt.Errorf("add like: %w", err)
		}

		err = s.issues.FindOneAndUpdate(ctx,
			bson.M{"_id": oid, "likes": userID},
			bson.M{
				"$pull": bson.M{"likes": userID},
				"$inc":  bson.M{"likesCount": -1},
				"$set":  bson.M{"updatedAt": now},
			}, opts).Decode(&issue)
		if err == nil {
			return LikeResult{Liked: false, LikesCount: issue.LikesCount}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return LikeResult{}, fmt.Errorf("remove like: %w", err)
		}

		count, err := s.issues.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return LikeResult{}, fmt.Errorf("count issue: %w", err)
		}
		if count == 0 {
			return LikeResult{}, ErrNotFound
		}
	}
	return LikeResult{}, ErrConflict
}

func (s *MongoIssueStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := s.issues.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoIssueStore) Analytics(ctx context.Context, now time.Time) (*Analytics, error) {
	byCategory, err := s.countBy(ctx, "$category")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.countBy(ctx, "$status")
	if err != nil {
		return nil, err
	}

	a := &Analytics{IssuesByCategory: byCategory, IssuesByStatus: byStatus}

	for _, day := range last7Days(now) {
		count, err := s.issues.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)},
		})
		if err != nil {
			return nil, fmt.Errorf("count issues for %s: %w", day.Format("2006-01-02"), err)
		}
		a.Last7Days = append(a.Last7Days, DayCount{Date: day.Format("2006-01-02"), Count: count})
	}

	top, err := s.find(ctx, bson.M{}, options.Find().SetSort(SortLikes.bson()).SetLimit(topLikedLimit))
	if err != nil {
		return nil, err
	}
	a.TopLikedIssues = topIssues(top)

	if a.TotalIssues, err = s.issues.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count issues: %w", err)
	}
	if a.OpenIssues, err = s.issues.CountDocuments(ctx, bson.M{"status": bson.M{"$in": openStatuses}}); err != nil {
		return nil, fmt.Errorf("count open issues: %w", err)
	}

	cursor, err := s.issues.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$likesCount"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sum likes: %w", err)
	}
	defer cursor.Close(ctx)
	var sums []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &sums); err != nil {
		return nil, fmt.Errorf("decode like sum: %w", err)
	}
	if len(sums) > 0 {
		a.TotalLikes = sums[0].Total
	}
	return a, nil
}

func (s *MongoIssueStore) countBy(ctx context.Context, field string) ([]NamedCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
		{"$project": bson.M{"name": "$_id", "value": "$count", "_id": 0}},
		{"$sort": bson.M{"name": 1}},
	}
	cursor, err := s.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	counts := []NamedCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode counts by %s: %w", field, err)
	}
	return counts, nil
}

func topIssues(issues []models.Issue) []TopIssue {
	top := make([]TopIssue, 0, len(issues))
	for _, issue := range issues {
		top = append(top, TopIssue{
			ID:         issue.ID.Hex(),
			Title:      issue.Title,
			Category:   issue.Category,
			LikesCount: issue.LikesCount,
		})
	}
	return top
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
