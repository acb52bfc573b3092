package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"clinic-referrals/internal/domain/visits"
)

type visitRepo struct {
	s *Store
}

func (r *visitRepo) Create(ctx context.Context, v visits.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if v.ID == "" {
		return errors.New("visit id required")
	}
	if _, exists := r.s.visits[v.ID]; exists {
		return errors.New("visit already exists")
	}
	if _, ok := r.s.clients[v.ClientID]; !ok {
		return errors.New("visit client does not exist")
	}

	r.s.visits[v.ID] = v
	return nil
}

func (r *visitRepo) ListByClient(ctx context.Context, clientID string, filter visits.ListFilter) ([]visits.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]visits.Visit, 0)

	for _, v := range r.s.visits {
		if v.ClientID != clientID {
			continue
		}
		if filter.PetID != "" && v.PetID != filter.PetID {
			continue
		}

		// Date filters (visit_date)
		if filter.From != nil {
			if v.VisitDate.Before((*filter.From).Add(-1 * time.Nanosecond)) {
				continue
			}
		}
		if filter.To != nil {
			if v.VisitDate.After(*filter.To) {
				continue
			}
		}

		out = append(out, v)
	}

	// Orden por visit_date desc (más reciente primero); empate por id asc.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VisitDate.Equal(out[j].VisitDate) {
			return out[i].VisitDate.After(out[j].VisitDate)
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
