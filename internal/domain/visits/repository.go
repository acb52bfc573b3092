package visits

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v Visit) error
	ListByClient(ctx context.Context, clientID string, filter ListFilter) ([]Visit, error)
}

type ListFilter struct {
	PetID string
	From  *time.Time
	To    *time.Time
	Limit int
}
