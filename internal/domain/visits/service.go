package visits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-referrals/internal/domain/clients"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrClientNotFound = errors.New("client not found")
	ErrPetNotOwned    = errors.New("pet does not belong to client")
	ErrStoreFailure   = errors.New("store failure")
)

// ClientReader: clients.Repository lo cumple.
type ClientReader interface {
	GetByID(ctx context.Context, id string) (clients.Client, error)
}

type Service struct {
	repo    Repository
	clients ClientReader
	now     func() time.Time
}

func NewService(repo Repository, clientReader ClientReader) *Service {
	return &Service{
		repo:    repo,
		clients: clientReader,
		now:     time.Now,
	}
}

type CreateInput struct {
	PetID      string
	VisitDate  time.Time
	Reason     string
	Notes      string
	RecordedBy string
}

func (s *Service) Create(ctx context.Context, clientID string, in CreateInput) (Visit, error) {
	clientID = strings.TrimSpace(clientID)
	in.PetID = strings.TrimSpace(in.PetID)
	in.Reason = strings.TrimSpace(in.Reason)

	if in.PetID == "" || in.Reason == "" || in.VisitDate.IsZero() {
		return Visit{}, ErrInvalidInput
	}

	c, err := s.client(ctx, clientID)
	if err != nil {
		return Visit{}, err
	}

	owned := false
	for _, p := range c.Pets {
		if p.ID == in.PetID {
			owned = true
			break
		}
	}
	if !owned {
		return Visit{}, ErrPetNotOwned
	}

	v := Visit{
		ID:         uuid.NewString(),
		ClientID:   c.ID,
		PetID:      in.PetID,
		VisitDate:  in.VisitDate,
		Reason:     in.Reason,
		Notes:      strings.TrimSpace(in.Notes),
		RecordedBy: strings.TrimSpace(in.RecordedBy),
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return Visit{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return v, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string, filter ListFilter) ([]Visit, error) {
	c, err := s.client(ctx, strings.TrimSpace(clientID))
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByClient(ctx, c.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return items, nil
}

func (s *Service) client(ctx context.Context, id string) (clients.Client, error) {
	if id == "" {
		return clients.Client{}, ErrClientNotFound
	}
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return clients.Client{}, ErrClientNotFound
		}
		return clients.Client{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return c, nil
}
