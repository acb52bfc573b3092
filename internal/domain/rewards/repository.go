package rewards

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserta todas o ninguna.
	CreateBatch(ctx context.Context, items []Reward) error
	GetByID(ctx context.Context, id string) (Reward, error)
	ListByClient(ctx context.Context, clientID string) ([]Reward, error)
	List(ctx context.Context, filter ListFilter) ([]Reward, error)
	// Claim pasa a CLAIMED solo si está PENDING; si no, ErrClaimConflict.
	Claim(ctx context.Context, id string, claimedAt time.Time, description string) error
}

type ListFilter struct {
	Status Status // vacío = todas
	Limit  int
}
