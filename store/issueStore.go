// Package store holds the document-store accessors for issues, users and
// contact messages. Every accessor has a MongoDB implementation and an
// in-memory one with the same semantics.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
	ErrDuplicate = errors.New("duplicate document")
	// ErrConflict is returned when a conditional update keeps losing races.
	ErrConflict = errors.New("concurrent update conflict")
)

// SortKey selects the ordering of a query result.
type SortKey string

const (
	SortNewest SortKey = "newest"
	SortLikes  SortKey = "likes"
)

// ParseSort maps a query parameter to a SortKey, defaulting to newest first.
func ParseSort(s string) SortKey {
	if SortKey(s) == SortLikes {
		return SortLikes
	}
	return SortNewest
}

func (k SortKey) bson() bson.D {
	if k == SortLikes {
		return bson.D{{Key: "likesCount", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// IssueFilter is a conjunction of exact, case-sensitive equality matches.
// Empty fields do not constrain the result.
type IssueFilter struct {
	State     string
	District  string
	Block     string
	Village   string
	Panchayat string
	PinCode   string
	Category  string
	SubIssue  string
	Status    models.IssueStatus
	UserID    string
}

// BSON renders the filter as a MongoDB query document.
func (f IssueFilter) BSON() bson.M {
	q := bson.M{}
	add := func(key, value string) {
		if value != "" {
			q[key] = value
		}
	}
	add("location.state", f.State)
	add("location.district", f.District)
	add("location.block", f.Block)
	add("location.village", f.Village)
	add("location.panchayat", f.Panchayat)
	add("location.pinCode", f.PinCode)
	add("category", f.Category)
	add("subIssue", f.SubIssue)
	add("status", string(f.Status))
	add("userId", f.UserID)
	return q
}

// Matches reports whether issue satisfies every non-empty field of the filter.
func (f IssueFilter) Matches(issue *models.Issue) bool {
	eq := func(want, got string) bool { return want == "" || want == got }
	return eq(f.State, issue.Location.State) &&
		eq(f.District, issue.Location.District) &&
		eq(f.Block, issue.Location.Block) &&
		eq(f.Village, issue.Location.Village) &&
		eq(f.Panchayat, issue.Location.Panchayat) &&
		eq(f.PinCode, issue.Location.PinCode) &&
		eq(f.Category, issue.Category) &&
		eq(f.SubIssue, issue.SubIssue) &&
		eq(string(f.Status), string(issue.Status)) &&
		eq(f.UserID, issue.UserID)
}

// LikeResult is the server-confirmed like state after a toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type NamedCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type TopIssue struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	LikesCount int    `json:"likesCount"`
}

// Analytics summarises the issue collection for the admin dashboard.
type Analytics struct {
	IssuesByCategory []NamedCount `json:"issuesByCategory"`
	IssuesByStatus   []NamedCount `json:"issuesByStatus"`
	Last7Days        []DayCount   `json:"last7Days"`
	TopLikedIssues   []TopIssue   `json:"topLikedIssues"`
	TotalIssues      int64        `json:"totalIssues"`
	TotalLikes       int64        `json:"totalLikes"`
	OpenIssues       int64        `json:"openIssues"`
}

// openStatuses are the statuses still awaiting an outcome.
var openStatuses = []models.IssueStatus{models.Pending, models.UnderReview, models.InProgress}

const topLikedLimit = 5

// IssueStore creates, queries and mutates issue documents.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id string) (*models.Issue, error)
	Query(ctx context.Context, filter IssueFilter, sort SortKey) ([]models.Issue, error)
	RecentWithCoordinates(ctx context.Context, limit int) ([]models.Issue, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (*models.Issue, error)
	ToggleLike(ctx context.Context, id, userID string) (LikeResult, error)
	AppendComment(ctx context.Context, id string, comment models.Comment) (*models.Issue, error)
	Retweet(ctx context.Context, id, userID string) (*models.Issue, error)
	Delete(ctx context.Context, id string) error
	Analytics(ctx context.Context, now time.Time) (*Analytics, error)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// last7Days returns the start of each of the last seven local days, oldest first.
func last7Days(now time.Time) []time.Time {
	days := make([]time.Time, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()))
	}
	return days
}
