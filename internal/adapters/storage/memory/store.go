package memory

import (
	"sync"

	"clinic-referrals/internal/domain/clients"
	"clinic-referrals/internal/domain/rewards"
	"clinic-referrals/internal/domain/visits"
)

// Store es el almacén in-memory (dev/tests). Los repos comparten el mismo
// lock y mapas para poder borrar en cascada como en Postgres.
type Store struct {
	mu sync.RWMutex

	clients map[string]clients.Client
	pets    map[string][]clients.Pet // por client_id
	rewards map[string]rewards.Reward
	visits  map[string]visits.Visit
}

func NewStore() *Store {
	return &Store{
		clients: make(map[string]clients.Client),
		pets:    make(map[string][]clients.Pet),
		rewards: make(map[string]rewards.Reward),
		visits:  make(map[string]visits.Visit),
	}
}

func (s *Store) Clients() clients.Repository { return &clientRepo{s: s} }
func (s *Store) Rewards() rewards.Repository { return &rewardRepo{s: s} }
func (s *Store) Visits() visits.Repository   { return &visitRepo{s: s} }
