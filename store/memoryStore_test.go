package store

import (
	"context"
	"testing"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestIssue(userID, district string, createdAt time.Time) *models.Issue {
	issue := models.NewIssue(userID, createdAt)
	issue.Category = "Water Supply"
	issue.SubIssue = "No water supply"
	issue.Description = "Taps dry for a week"
	issue.Location = models.Location{
		State:     "Jharkhand",
		District:  district,
		Block:     "Kanke",
		Village:   "Pithoria",
		Panchayat: "Pithoria",
		PinCode:   "834001",
		Mobile:    "9876543210",
	}
	issue.PhotoURL = "https://cdn.example.com/p.jpg"
	issue.PhotoPublicID = "issues/p"
	return &issue
}

func TestCreate_Defaults(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()

	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))

	got, err := s.Get(ctx, issue.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.Pending, got.Status)
	assert.Equal(t, 0, got.LikesCount)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
	assert.NotNil(t, got.Comments)
}

func TestGet_Errors(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = s.Get(ctx, "64b7f0c2e1a2b3c4d5e6f708")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLike_TwiceRestoresState(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))
	id := issue.ID.Hex()

	res, err := s.ToggleLike(ctx, id, "u2")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikesCount)

	res, err = s.ToggleLike(ctx, id, "u2")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikesCount)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, got.Likes, "u2")
	assert.Equal(t, len(got.Likes), got.LikesCount)
}

func TestToggleLike_CountMatchesSet(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))
	id := issue.ID.Hex()

	for _, u := range []string{"a", "b", "c", "b", "d", "a"} {
		_, err := s.ToggleLike(ctx, id, u)
		require.NoError(t, err)
	}

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c", "d"}, got.Likes)
	assert.Equal(t, 2, got.LikesCount)
}

func TestToggleLike_MissingIssue(t *testing.T) {
	s := NewMemoryIssueStore()
	_, err := s.ToggleLike(context.Background(), "64b7f0c2e1a2b3c4d5e6f708", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendComment_Monotonic(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))
	id := issue.ID.Hex()

	previous := []models.Comment{}
	for i, text := range []string{"first", "second", "third"} {
		updated, err := s.AppendComment(ctx, id, models.Comment{UserID: "u2", Name: "Asha", Text: text, CreatedAt: time.Now()})
		require.NoError(t, err)
		require.Len(t, updated.Comments, i+1)
		assert.Equal(t, previous, updated.Comments[:i])
		previous = updated.Comments
	}
}

func TestRetweet_IsASet(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))

	_, err := s.Retweet(ctx, issue.ID.Hex(), "u2")
	require.NoError(t, err)
	updated, err := s.Retweet(ctx, issue.ID.Hex(), "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, updated.Retweets)
}

func TestQuery_FilterAndSort(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	older := newTestIssue("u1", "Ranchi", base)
	newer := newTestIssue("u1", "Ranchi", base.Add(time.Hour))
	lower := newTestIssue("u1", "ranchi", base.Add(2*time.Hour))
	other := newTestIssue("u2", "Dhanbad", base.Add(3*time.Hour))
	for _, i := range []*models.Issue{older, newer, lower, other} {
		require.NoError(t, s.Create(ctx, i))
	}
	_, err := s.ToggleLike(ctx, older.ID.Hex(), "x")
	require.NoError(t, err)

	got, err := s.Query(ctx, IssueFilter{District: "Ranchi"}, SortNewest)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)

	got, err = s.Query(ctx, IssueFilter{District: "Ranchi"}, SortLikes)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)

	got, err = s.Query(ctx, IssueFilter{}, SortNewest)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestQuery_EqualCreatedAtOrderedByID(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []primitive.ObjectID
	for i := 0; i < 6; i++ {
		issue := newTestIssue("u1", "Ranchi", at)
		require.NoError(t, s.Create(ctx, issue))
		ids = append(ids, issue.ID)
	}

	for _, key := range []SortKey{SortNewest, SortLikes} {
		for run := 0; run < 5; run++ {
			got, err := s.Query(ctx, IssueFilter{}, key)
			require.NoError(t, err)
			require.Len(t, got, len(ids))
			for i, issue := range got {
				assert.Equal(t, ids[len(ids)-1-i], issue.ID)
			}
		}
	}
}

func TestDelete_ExcludedFromQueries(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))

	require.NoError(t, s.Delete(ctx, issue.ID.Hex()))
	assert.ErrorIs(t, s.Delete(ctx, issue.ID.Hex()), ErrNotFound)

	got, err := s.Query(ctx, IssueFilter{}, SortNewest)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScenario_WaterSupplyInRanchi(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	issue := newTestIssue("u1", "Ranchi", time.Now())
	require.NoError(t, s.Create(ctx, issue))
	id := issue.ID.Hex()

	got, err := s.Query(ctx, IssueFilter{District: "Ranchi"}, SortNewest)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, issue.ID, got[0].ID)

	_, err = s.UpdateStatus(ctx, id, models.Resolved)
	require.NoError(t, err)
	got, err = s.Query(ctx, IssueFilter{Status: models.Resolved}, SortNewest)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, issue.ID, got[0].ID)

	updated, err := s.AppendComment(ctx, id, models.Comment{Text: "Confirmed"})
	require.NoError(t, err)
	assert.Len(t, updated.Comments, 1)
}

func TestRecentWithCoordinates(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 4; i++ {
		issue := newTestIssue("u1", "Ranchi", base.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			issue.Location.Coordinates = &models.GeoPoint{Lat: 23.3, Lng: 85.3}
		}
		require.NoError(t, s.Create(ctx, issue))
	}

	got, err := s.RecentWithCoordinates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Location.Coordinates)
}

func TestAnalytics(t *testing.T) {
	s := NewMemoryIssueStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	a := newTestIssue("u1", "Ranchi", now)
	b := newTestIssue("u1", "Ranchi", now.AddDate(0, 0, -1))
	b.Category = "Electricity"
	b.Status = models.Resolved
	c := newTestIssue("u1", "Ranchi", now.AddDate(0, 0, -30))
	for _, i := range []*models.Issue{a, b, c} {
		require.NoError(t, s.Create(ctx, i))
	}
	_, err := s.ToggleLike(ctx, b.ID.Hex(), "x")
	require.NoError(t, err)

	got, err := s.Analytics(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.TotalIssues)
	assert.Equal(t, int64(2), got.OpenIssues)
	assert.Equal(t, int64(1), got.TotalLikes)
	assert.Equal(t, []NamedCount{{Name: "Electricity", Value: 1}, {Name: "Water Supply", Value: 2}}, got.IssuesByCategory)
	require.Len(t, got.Last7Days, 7)
	assert.Equal(t, "2025-03-10", got.Last7Days[6].Date)
	assert.Equal(t, int64(1), got.Last7Days[6].Count)
	assert.Equal(t, int64(1), got.Last7Days[5].Count)
	require.NotEmpty(t, got.TopLikedIssues)
	assert.Equal(t, b.ID.Hex(), got.TopLikedIssues[0].ID)
}

func TestMemoryUserStore(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: " Asha@Example.com ", Role: models.RoleCitizen}
	require.NoError(t, s.Create(ctx, user))
	assert.ErrorIs(t, s.Create(ctx, &models.User{Email: "asha@example.com"}), ErrDuplicate)

	got, err := s.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, s.SetRole(ctx, "asha@example.com", models.RoleAdmin))
	got, err = s.GetByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.ErrorIs(t, s.SetRole(ctx, "nobody@example.com", models.RoleAdmin), ErrNotFound)
}

func TestMemoryContactStore(t *testing.T) {
	s := NewMemoryContactStore()
	ctx := context.Background()

	msg := &models.ContactMessage{Name: "Ravi", Subject: "Hi", Status: models.ContactNew, CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, msg))

	updated, err := s.UpdateStatus(ctx, msg.ID.Hex(), models.ContactResolved)
	require.NoError(t, err)
	assert.Equal(t, models.ContactResolved, updated.Status)

	_, err = s.UpdateStatus(ctx, "64b7f0c2e1a2b3c4d5e6f708", models.ContactClosed)
	assert.ErrorIs(t, err, ErrNotFound)
}
