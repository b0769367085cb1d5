package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ayush/taskgate/internal/models"
)

// loadUsers reads the user collection. A missing key is an empty collection;
// so is a value that does not parse, which is logged and otherwise ignored.
func loadUsers(ctx context.Context, kv Storage, log *slog.Logger) ([]models.User, error) {
	raw, ok, err := kv.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if !ok || raw == "" {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		log.Warn("discarding unreadable user collection", "key", UsersKey, "error", err)
		return []models.User{}, nil
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func saveUsers(ctx context.Context, kv Storage, users []models.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := kv.Set(ctx, UsersKey, string(raw)); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

func findByEmail(users []models.User, email string) *models.User {
	for i := range users {
		if users[i].Email == email {
			return &users[i]
		}
	}
	return nil
}

func findByUsername(users []models.User, username string) *models.User {
	for i := range users {
		if users[i].Username == username {
			return &users[i]
		}
	}
	return nil
}
