package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIssueStore is an IssueStore backed by a map. It copies documents in
// and out so callers never share slices with the stored state.
type MemoryIssueStore struct {
	mu     sync.RWMutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func cloneIssue(issue *models.Issue) *models.Issue {
	c := *issue
	c.Likes = append([]string{}, issue.Likes...)
	c.Comments = append([]models.Comment{}, issue.Comments...)
	c.Retweets = append([]string{}, issue.Retweets...)
	if issue.Location.Coordinates != nil {
		p := *issue.Location.Coordinates
		c.Location.Coordinates = &p
	}
	return &c
}

func (s *MemoryIssueStore) Create(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, exists := s.issues[issue.ID]; exists {
		return ErrDuplicate
	}
	s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (s *MemoryIssueStore) Get(_ context.Context, id string) (*models.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneIssue(issue), nil
}

func (s *MemoryIssueStore) Query(_ context.Context, filter IssueFilter, key SortKey) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []models.Issue{}
	for _, issue := range s.issues {
		if filter.Matches(issue) {
			result = append(result, *cloneIssue(issue))
		}
	}
	sortIssues(result, key)
	return result, nil
}

func sortIssues(issues []models.Issue, key SortKey) {
	sort.SliceStable(issues, func(i, j int) bool {
		if key == SortLikes && issues[i].LikesCount != issues[j].LikesCount {
			return issues[i].LikesCount > issues[j].LikesCount
		}
		if !issues[i].CreatedAt.Equal(issues[j].CreatedAt) {
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		}
		return issues[i].ID.Hex() > issues[j].ID.Hex()
	})
}

func (s *MemoryIssueStore) RecentWithCoordinates(ctx context.Context, limit int) ([]models.Issue, error) {
	all, _ := s.Query(ctx, IssueFilter{}, SortNewest)
	result := []models.Issue{}
	for _, issue := range all {
		if issue.Location.Coordinates == nil {
			continue
		}
		result = append(result, issue)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryIssueStore) mutate(id string, fn func(issue *models.Issue)) (*models.Issue, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[oid]
	if !ok {
		return nil, ErrNotFound
	}
	fn(issue)
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (s *MemoryIssueStore) UpdateStatus(_ context.Context, id string, status models.IssueStatus) (*models.Issue, error) {
	return s.mutate(id, func(issue *models.Issue) { issue.Status = status })
}

func (s *MemoryIssueStore) ToggleLike(_ context.Context, id, userID string) (LikeResult, error) {
	var result LikeResult
	_, err := s.mutate(id, func(issue *models.Issue) {
		if issue.LikedBy(userID) {
			issue.Likes = removeString(issue.Likes, userID)
			issue.LikesCount--
		} else {
			issue.Likes = append(issue.Likes, userID)
			issue.LikesCount++
			result.Liked = true
		}
		result.LikesCount = issue.LikesCount
	})
	return result, err
}

func (s *MemoryIssueStore) AppendComment(_ context.Context, id string, comment models.Comment) (*models.Issue, error) {
	return s.mutate(id, func(issue *models.Issue) { issue.Comments = append(issue.Comments, comment) })
}

func (s *MemoryIssueStore) Retweet(_ context.Context, id, userID string) (*models.Issue, error) {
	return s.mutate(id, func(issue *models.Issue) {
		for _, existing := range issue.Retweets {
			if existing == userID {
				return
			}
		}
		issue.Retweets = append(issue.Retweets, userID)
	})
}

func (s *MemoryIssueStore) Delete(_ context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[oid]; !ok {
		return ErrNotFound
	}
	delete(s.issues, oid)
	return nil
}

func (s *MemoryIssueStore) Analytics(ctx context.Context, now time.Time) (*Analytics, error) {
	all, _ := s.Query(ctx, IssueFilter{}, SortLikes)
	a := &Analytics{}

	byCategory := map[string]int64{}
	byStatus := map[string]int64{}
	for _, issue := range all {
		byCategory[issue.Category]++
		byStatus[string(issue.Status)]++
		a.TotalLikes += int64(issue.LikesCount)
		for _, open := range openStatuses {
			if issue.Status == open {
				a.OpenIssues++
			}
		}
	}
	a.IssuesByCategory = namedCounts(byCategory)
	a.IssuesByStatus = namedCounts(byStatus)
	a.TotalIssues = int64(len(all))

	for _, day := range last7Days(now) {
		next := day.AddDate(0, 0, 1)
		var count int64
		for _, issue := range all {
			if !issue.CreatedAt.Before(day) && issue.CreatedAt.Before(next) {
				count++
			}
		}
		a.Last7Days = append(a.Last7Days, DayCount{Date: day.Format("2006-01-02"), Count: count})
	}

	if len(all) > topLikedLimit {
		all = all[:topLikedLimit]
	}
	a.TopLikedIssues = topIssues(all)
	return a, nil
}

func namedCounts(m map[string]int64) []NamedCount {
	counts := make([]NamedCount, 0, len(m))
	for name, value := range m {
		counts = append(counts, NamedCount{Name: name, Value: value})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// MemoryUserStore is a UserStore backed by a map keyed by id.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = NormalizeEmail(user.Email)
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.put(user, func(u *models.User) { u.Password = passwordHash })
}

func (s *MemoryUserStore) SetRole(ctx context.Context, email string, role models.Role) error {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.put(user, func(u *models.User) { u.Role = role })
}

func (s *MemoryUserStore) put(user *models.User, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	fn(&current)
	current.UpdatedAt = time.Now()
	s.users[user.ID] = current
	return nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		user.Password = ""
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// MemoryContactStore is a ContactStore backed by a slice.
type MemoryContactStore struct {
	mu       sync.RWMutex
	messages []models.ContactMessage
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{}
}

func (s *MemoryContactStore) Create(_ context.Context, msg *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryContactStore) List(_ context.Context) ([]models.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := append([]models.ContactMessage{}, s.messages...)
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].CreatedAt.After(messages[j].CreatedAt) })
	return messages, nil
}

func (s *MemoryContactStore) UpdateStatus(_ context.Context, id string, status models.ContactStatus) (*models.ContactMessage, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == oid {
			s.messages[i].Status = status
			s.messages[i].UpdatedAt = time.Now()
			msg := s.messages[i]
			return &msg, nil
		}
	}
	return nil, ErrNotFound
}
