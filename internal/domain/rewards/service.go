package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-referrals/internal/domain/clients"
	"clinic-referrals/internal/platform/logger"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrClaimConflict = errors.New("reward is not pending")
	ErrStoreFailure  = errors.New("store failure")
)

// ClientStore es lo que el motor necesita del almacén de clientes.
// clients.Repository lo cumple tal cual.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (clients.Client, error)
	List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error)
}

// Recorder recibe métricas del servicio (puede ser nil).
type Recorder interface {
	RewardsGranted(t Type, n int)
	RewardClaimed(t Type)
}

type Service struct {
	repo    Repository
	clients ClientStore
	log     logger.Logger
	rec     Recorder
	locks   *keyLock
	now     func() time.Time
}

func NewService(repo Repository, clientStore ClientStore, log logger.Logger, rec Recorder) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		clients: clientStore,
		log:     log,
		rec:     rec,
		locks:   newKeyLock(),
		now:     time.Now,
	}
}

// Evaluate corre el motor para clientID y persiste los borradores en un solo lote.
// Las evaluaciones del mismo cliente se serializan para no otorgar dos veces
// el mismo umbral dentro de este proceso.
func (s *Service) Evaluate(ctx context.Context, clientID string) ([]Reward, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrNotFound
	}

	unlock := s.locks.Lock(clientID)
	defer unlock()

	all, err := s.clients.List(ctx, clients.ListFilter{})
	if err != nil {
		return nil, storeErr(err)
	}
	existing, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err)
	}

	drafts, err := Evaluate(clientID, all, existing, s.now())
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return drafts, nil
	}

	if err := s.repo.CreateBatch(ctx, drafts); err != nil {
		return nil, storeErr(err)
	}

	var direct, second int
	for _, d := range drafts {
		if d.Type == TypeDirect {
			direct++
		} else {
			second++
		}
	}
	if s.rec != nil {
		s.rec.RewardsGranted(TypeDirect, direct)
		s.rec.RewardsGranted(TypeSecondLevel, second)
	}
	s.log.Info("rewards granted", map[string]any{
		"client_id":    clientID,
		"direct":       direct,
		"second_level": second,
	})

	return drafts, nil
}

// EvaluateReferrer cumple clients.RewardEvaluator.
func (s *Service) EvaluateReferrer(ctx context.Context, clientID string) (int, error) {
	out, err := s.Evaluate(ctx, clientID)
	return len(out), err
}

// ReconcileAll re-evalúa a todos los clientes. Es idempotente: solo crea lo
// que falte. Los errores por cliente se acumulan y no cortan el recorrido.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	all, err := s.clients.List(ctx, clients.ListFilter{})
	if err != nil {
		return 0, storeErr(err)
	}

	total := 0
	var errs []error
	for _, c := range all {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := s.Evaluate(ctx, c.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", c.ID, err))
			continue
		}
		total += len(out)
	}
	return total, errors.Join(errs...)
}

// Claim marca una recompensa PENDING como CLAIMED con una nota obligatoria
// (qué se entregó y a quién).
func (s *Service) Claim(ctx context.Context, rewardID, description string) (Reward, error) {
	rewardID = strings.TrimSpace(rewardID)
	description = strings.TrimSpace(description)

	if description == "" {
		return Reward{}, ErrInvalidInput
	}
	if rewardID == "" {
		return Reward{}, ErrNotFound
	}

	r, err := s.repo.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Reward{}, ErrNotFound
		}
		return Reward{}, storeErr(err)
	}
	if r.Status != StatusPending {
		return Reward{}, ErrClaimConflict
	}

	now := s.now()
	if err := s.repo.Claim(ctx, rewardID, now, description); err != nil {
		switch {
		case errors.Is(err, ErrClaimConflict):
			return Reward{}, ErrClaimConflict
		case errors.Is(err, ErrNotFound):
			return Reward{}, ErrNotFound
		default:
			return Reward{}, storeErr(err)
		}
	}

	r.Status = StatusClaimed
	r.DateClaimed = &now
	r.ClaimedDescription = description

	if s.rec != nil {
		s.rec.RewardClaimed(r.Type)
	}
	s.log.Info("reward claimed", map[string]any{"reward_id": r.ID, "client_id": r.ClientID})
	return r, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Reward, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrNotFound
	}
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	items, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Reward, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
