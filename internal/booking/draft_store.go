package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists wizard snapshots in Redis so an in-progress booking
// survives a page reload. Abandoned drafts expire with the TTL.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a draft store. ttl bounds how long an abandoned
// wizard is kept.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	if client == nil {
		panic("booking: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DraftStore{client: client, ttl: ttl}
}

// confirmLeaseTTL bounds how long a confirm holds the draft exclusively. If
// the process dies mid-handoff the lease lapses on its own and the user can
// retry, instead of the draft staying locked until its own TTL.
const confirmLeaseTTL = 2 * time.Minute

func draftKey(id string) string {
	return "booking:draft:" + id
}

func confirmKey(id string) string {
	return "booking:confirm:" + id
}

// Save writes the flow snapshot, refreshing the TTL.
func (s *DraftStore) Save(ctx context.Context, f *Flow) error {
	payload, err := json.Marshal(f.Snapshot())
	if err != nil {
		return fmt.Errorf("booking: marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(f.ID()), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("booking: save draft: %w", err)
	}
	return nil
}

// Load restores a flow by draft id.
func (s *DraftStore) Load(ctx context.Context, id string) (*Flow, error) {
	payload, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("booking: load draft: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("booking: decode draft: %w", err)
	}
	return Restore(snap), nil
}

// AcquireConfirm takes the short-lived exclusive lease for a confirm attempt.
// It returns false when another confirm on the same draft is in flight.
func (s *DraftStore) AcquireConfirm(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.SetNX(ctx, confirmKey(id), "1", confirmLeaseTTL).Result()
	if err != nil {
		return false, fmt.Errorf("booking: acquire confirm lease: %w", err)
	}
	return ok, nil
}

// ReleaseConfirm drops the confirm lease so a failed handoff can be retried
// immediately.
func (s *DraftStore) ReleaseConfirm(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, confirmKey(id)).Err(); err != nil {
		return fmt.Errorf("booking: release confirm lease: %w", err)
	}
	return nil
}

// Delete discards a draft. Deleting an unknown draft is not an error.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("booking: delete draft: %w", err)
	}
	return nil
}
