// Package favorites keeps each user's saved practitioners as a Redis set.
package favorites

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists per-user favorite practitioner ids.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	if client == nil {
		panic("favorites: redis client required")
	}
	return &Store{client: client}
}

func favoritesKey(userID string) string {
	return "favorites:" + userID
}

// Add marks a practitioner as a favorite. Adding twice is a no-op.
func (s *Store) Add(ctx context.Context, userID, practitionerID string) error {
	if err := s.client.SAdd(ctx, favoritesKey(userID), practitionerID).Err(); err != nil {
		return fmt.Errorf("favorites: add: %w", err)
	}
	return nil
}

// Remove unmarks a practitioner. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, userID, practitionerID string) error {
	if err := s.client.SRem(ctx, favoritesKey(userID), practitionerID).Err(); err != nil {
		return fmt.Errorf("favorites: remove: %w", err)
	}
	return nil
}

// List returns the user's favorite practitioner ids.
func (s *Store) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, favoritesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("favorites: list: %w", err)
	}
	return ids, nil
}

// Contains reports whether the practitioner is a favorite of the user.
func (s *Store) Contains(ctx context.Context, userID, practitionerID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, favoritesKey(userID), practitionerID).Result()
	if err != nil {
		return false, fmt.Errorf("favorites: contains: %w", err)
	}
	return ok, nil
}
