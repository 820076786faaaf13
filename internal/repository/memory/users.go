package memory

import (
	"context"
	"strings"

	"idatech-backoffice/internal/model"
)

type userStore struct {
	db *DB
	tx *state
}

func (u *userStore) FindByID(ctx context.Context, id string) (model.User, error) {
	var found model.User
	err := u.db.view(u.tx, func(s *state) error {
		user, ok := s.users[id]
		if !ok {
			return model.ErrNotFound
		}
		found = user
		return nil
	})
	return found, err
}

func (u *userStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	key := strings.ToLower(strings.TrimSpace(username))
	var found model.User
	err := u.db.view(u.tx, func(s *state) error {
		for _, user := range s.users {
			if strings.ToLower(user.Username) == key {
				found = user
				return nil
			}
		}
		return model.ErrNotFound
	})
	return found, err
}

func (u *userStore) Create(ctx context.Context, user model.User) error {
	key := strings.ToLower(user.Username)
	return u.db.view(u.tx, func(s *state) error {
		for _, existing := range s.users {
			if strings.ToLower(existing.Username) == key {
				return model.ErrUserAlreadyExists
			}
		}
		s.users[user.ID] = user
		return nil
	})
}

func (u *userStore) Count(ctx context.Context) (int, error) {
	var count int
	err := u.db.view(u.tx, func(s *state) error {
		count = len(s.users)
		return nil
	})
	return count, err
}
