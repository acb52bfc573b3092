package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"clinic-referrals/internal/domain/clients"
)

type clientRepo struct {
	s *Store
}

func (r *clientRepo) Create(ctx context.Context, c clients.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("client id required")
	}
	if _, exists := r.s.clients[c.ID]; exists {
		return errors.New("client already exists")
	}
	c.Pets = nil
	r.s.clients[c.ID] = c
	return nil
}

func (r *clientRepo) CreatePets(ctx context.Context, clientID string, pets []clients.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[clientID]; !ok {
		return clients.ErrNotFound
	}
	for _, p := range pets {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("pet id required")
		}
	}
	r.s.pets[clientID] = append(r.s.pets[clientID], pets...)
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return r.withPets(c), nil
}

func (r *clientRepo) List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]clients.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		if q != "" && !matches(c, q) {
			continue
		}
		out = append(out, r.withPets(c))
	}

	// Orden por nombre (como la lista de la UI); desempate por id para estabilidad.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *clientRepo) Update(ctx context.Context, c clients.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.clients[c.ID]
	if !ok {
		return clients.ErrNotFound
	}
	// Solo datos de contacto; referidor y fecha de registro no cambian.
	cur.Name = c.Name
	cur.Phone = c.Phone
	cur.Email = c.Email
	cur.Cedula = c.Cedula
	cur.UpdatedAt = c.UpdatedAt
	r.s.clients[c.ID] = cur
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return clients.ErrNotFound
	}
	for _, c := range r.s.clients {
		if c.ReferrerID == id {
			return clients.ErrHasReferrals
		}
	}

	delete(r.s.clients, id)
	delete(r.s.pets, id)
	for rid, rw := range r.s.rewards {
		if rw.ClientID == id {
			delete(r.s.rewards, rid)
		}
	}
	for vid, v := range r.s.visits {
		if v.ClientID == id {
			delete(r.s.visits, vid)
		}
	}
	return nil
}

// withPets requiere el lock tomado.
func (r *clientRepo) withPets(c clients.Client) clients.Client {
	pets := r.s.pets[c.ID]
	c.Pets = append(make([]clients.Pet, 0, len(pets)), pets...)
	return c
}

func matches(c clients.Client, q string) bool {
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Phone), q) ||
		strings.Contains(strings.ToLower(c.Cedula), q)
}
