package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"clinic-referrals/internal/domain/rewards"
)

type rewardRepo struct {
	s *Store
}

// CreateBatch valida todo antes de escribir: o entran todas o ninguna.
func (r *rewardRepo) CreateBatch(ctx context.Context, items []rewards.Reward) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := map[string]struct{}{}
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return errors.New("reward id required")
		}
		if _, ok := r.s.clients[it.ClientID]; !ok {
			return errors.New("reward client does not exist")
		}
		if _, ok := r.s.rewards[it.ID]; ok {
			return errors.New("reward already exists")
		}
		if _, ok := seen[it.ID]; ok {
			return errors.New("duplicated reward id in batch")
		}
		seen[it.ID] = struct{}{}
	}

	for _, it := range items {
		r.s.rewards[it.ID] = it
	}
	return nil
}

func (r *rewardRepo) GetByID(ctx context.Context, id string) (rewards.Reward, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.rewards[id]
	if !ok {
		return rewards.Reward{}, rewards.ErrNotFound
	}
	return it, nil
}

func (r *rewardRepo) ListByClient(ctx context.Context, clientID string) ([]rewards.Reward, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]rewards.Reward, 0)
	for _, it := range r.s.rewards {
		if it.ClientID == clientID {
			out = append(out, it)
		}
	}
	sortByEarnedDesc(out)
	return out, nil
}

func (r *rewardRepo) List(ctx context.Context, filter rewards.ListFilter) ([]rewards.Reward, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]rewards.Reward, 0)
	for _, it := range r.s.rewards {
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		out = append(out, it)
	}
	sortByEarnedDesc(out)

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *rewardRepo) Claim(ctx context.Context, id string, claimedAt time.Time, description string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.rewards[id]
	if !ok {
		return rewards.ErrNotFound
	}
	if it.Status != rewards.StatusPending {
		return rewards.ErrClaimConflict
	}

	it.Status = rewards.StatusClaimed
	it.DateClaimed = &claimedAt
	it.ClaimedDescription = description
	r.s.rewards[id] = it
	return nil
}

func sortByEarnedDesc(items []rewards.Reward) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].DateEarned.Equal(items[j].DateEarned) {
			return items[i].DateEarned.After(items[j].DateEarned)
		}
		return items[i].ID < items[j].ID
	})
}
