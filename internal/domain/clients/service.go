package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-referrals/internal/domain/referrals"
	"clinic-referrals/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("client not found")
	ErrReferrerNotFound = errors.New("referrer not found")
	ErrHasReferrals     = errors.New("client has direct referrals")
	ErrStoreFailure     = errors.New("store failure")
	ErrRewardEvaluation = errors.New("reward evaluation failed")
)

var validate = validator.New()

// RewardEvaluator lo implementa rewards.Service.
// Se define acá para evitar ciclos de imports (clients <-> rewards).
type RewardEvaluator interface {
	EvaluateReferrer(ctx context.Context, clientID string) (int, error)
}

type Service struct {
	repo    Repository
	rewards RewardEvaluator
	log     logger.Logger
	now     func() time.Time
}

// NewService: rewards puede ser nil (no se otorgan recompensas al registrar).
func NewService(repo Repository, rewards RewardEvaluator, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		rewards: rewards,
		log:     log,
		now:     time.Now,
	}
}

type PetInput struct {
	Name    string `validate:"required"`
	Species string `validate:"required"`
	Breed   string
}

type RegisterInput struct {
	Name       string `validate:"required"`
	Phone      string `validate:"required"`
	Email      string `validate:"omitempty,email"`
	Cedula     string
	ReferrerID string

	// RegistrationDate nil = ahora.
	RegistrationDate *time.Time

	Pets []PetInput `validate:"required,min=1,dive"`
}

type RegisterResult struct {
	Client         Client
	RewardsGranted int
}

// Register da de alta al cliente y sus mascotas. Si tiene referidor, evalúa
// recompensas del referidor justo después de persistir.
//
// Un fallo al evaluar no deshace el alta: se devuelve el cliente creado junto
// con un error que envuelve ErrRewardEvaluation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in = normalizeRegister(in)
	if err := validate.Struct(in); err != nil {
		return RegisterResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}

	if in.ReferrerID != "" {
		if _, err := s.repo.GetByID(ctx, in.ReferrerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return RegisterResult{}, ErrReferrerNotFound
			}
			return RegisterResult{}, storeErr(err)
		}
	}

	now := s.now()
	regDate := now
	if in.RegistrationDate != nil && !in.RegistrationDate.IsZero() {
		regDate = *in.RegistrationDate
	}

	c := Client{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Phone:            in.Phone,
		Email:            in.Email,
		Cedula:           in.Cedula,
		RegistrationDate: regDate,
		ReferrerID:       in.ReferrerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return RegisterResult{}, storeErr(err)
	}

	pets := make([]Pet, 0, len(in.Pets))
	for _, p := range in.Pets {
		pets = append(pets, Pet{
			ID:        uuid.NewString(),
			ClientID:  c.ID,
			Name:      p.Name,
			Species:   p.Species,
			Breed:     p.Breed,
			CreatedAt: now,
		})
	}
	if err := s.repo.CreatePets(ctx, c.ID, pets); err != nil {
		// Sin mascotas el cliente no es válido: se deshace el alta.
		if delErr := s.repo.Delete(ctx, c.ID); delErr != nil {
			s.log.Error("rollback of client without pets failed", map[string]any{
				"client_id": c.ID,
				"err":       delErr.Error(),
			})
		}
		return RegisterResult{}, storeErr(err)
	}
	c.Pets = pets

	log := s.log.With(map[string]any{"client_id": c.ID})
	log.Info("client registered", map[string]any{"pets": len(pets), "referrer_id": c.ReferrerID})

	res := RegisterResult{Client: c}
	if c.ReferrerID == "" || s.rewards == nil {
		return res, nil
	}

	n, err := s.rewards.EvaluateReferrer(ctx, c.ReferrerID)
	if err != nil {
		log.Warn("reward evaluation failed after registration", map[string]any{
			"referrer_id": c.ReferrerID,
			"error":       err,
		})
		return res, fmt.Errorf("%w: %w", ErrRewardEvaluation, err)
	}
	res.RewardsGranted = n
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Client{}, ErrNotFound
		}
		return Client{}, storeErr(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// UpdateContactInput: punteros para PATCH real, nil = no tocar.
// El referidor no es editable.
type UpdateContactInput struct {
	Name   *string
	Phone  *string
	Email  *string
	Cedula *string
}

func (s *Service) UpdateContact(ctx context.Context, id string, in UpdateContactInput) (Client, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Cedula != nil {
		c.Cedula = strings.TrimSpace(*in.Cedula)
	}

	if c.Name == "" || c.Phone == "" {
		return Client{}, ErrInvalidInput
	}
	if c.Email != "" {
		if err := validate.Var(c.Email, "email"); err != nil {
			return Client{}, fmt.Errorf("%w: email", ErrInvalidInput)
		}
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Client{}, ErrNotFound
		}
		return Client{}, storeErr(err)
	}
	return c, nil
}

// Delete solo procede si el cliente no tiene referidos directos.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return storeErr(err)
	}
	if !referrals.Contains(id, all) {
		return ErrNotFound
	}
	if n := referrals.DirectCount(id, all); n > 0 {
		return ErrHasReferrals
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return ErrNotFound
		case errors.Is(err, ErrHasReferrals):
			return ErrHasReferrals
		default:
			return storeErr(err)
		}
	}

	s.log.Info("client deleted", map[string]any{"client_id": id})
	return nil
}

// Referrals arma el árbol de referidos (dos niveles) del cliente.
func (s *Service) Referrals(ctx context.Context, id string) (referrals.Summary[Client], error) {
	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return referrals.Summary[Client]{}, storeErr(err)
	}
	sum, err := referrals.Summarize(strings.TrimSpace(id), all)
	if err != nil {
		return referrals.Summary[Client]{}, ErrNotFound
	}
	return sum, nil
}

func normalizeRegister(in RegisterInput) RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Cedula = strings.TrimSpace(in.Cedula)
	in.ReferrerID = strings.TrimSpace(in.ReferrerID)

	pets := make([]PetInput, 0, len(in.Pets))
	for _, p := range in.Pets {
		pets = append(pets, PetInput{
			Name:    strings.TrimSpace(p.Name),
			Species: strings.TrimSpace(p.Species),
			Breed:   strings.TrimSpace(p.Breed),
		})
	}
	in.Pets = pets
	return in
}

// describe resume los errores del validator como "campo:tag, ...".
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Namespace())+":"+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
