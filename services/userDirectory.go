package services

import (
	"context"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// UserDirectory resolves user ids to profiles through a small expiring
// cache in front of the user store.
type UserDirectory struct {
	users store.UserStore
	cache *expirable.LRU[string, models.User]
}

func NewUserDirectory(users store.UserStore, size int, ttl time.Duration) *UserDirectory {
	return &UserDirectory{
		users: users,
		cache: expirable.NewLRU[string, models.User](size, nil, ttl),
	}
}

func (d *UserDirectory) Lookup(ctx context.Context, id string) (*models.User, error) {
	if user, ok := d.cache.Get(id); ok {
		return &user, nil
	}
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	d.cache.Add(id, *user)
	return user, nil
}

// Forget drops a cached profile after it changes.
func (d *UserDirectory) Forget(id string) {
	d.cache.Remove(id)
}
