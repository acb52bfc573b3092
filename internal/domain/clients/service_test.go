package clients

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID      map[string]Client
	createErr error
	petsErr   error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) error {
	if r.createErr != nil {
		return r.createErr
	}
	if c.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) CreatePets(ctx context.Context, clientID string, pets []Pet) error {
	if r.petsErr != nil {
		return r.petsErr
	}
	c, ok := r.byID[clientID]
	if !ok {
		return ErrNotFound
	}
	c.Pets = append(c.Pets, pets...)
	r.byID[clientID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	q := strings.ToLower(filter.Query)
	out := make([]Client, 0)
	for _, c := range r.byID {
		if q != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Phone+" "+c.Cedula), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	for _, c := range r.byID {
		if c.ReferrerID == id {
			return ErrHasReferrals
		}
	}
	delete(r.byID, id)
	return nil
}

type testEvaluator struct {
	calls []string
	n     int
	err   error
}

func (e *testEvaluator) EvaluateReferrer(ctx context.Context, clientID string) (int, error) {
	e.calls = append(e.calls, clientID)
	return e.n, e.err
}

func validInput(name string) RegisterInput {
	return RegisterInput{
		Name:  name,
		Phone: "555-0001",
		Pets:  []PetInput{{Name: "Max", Species: "Perro", Breed: "Labrador"}},
	}
}

func mustRegister(t *testing.T, svc *Service, in RegisterInput) Client {
	t.Helper()
	res, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	return res.Client
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_CreatesClientWithPets(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:   "  Juan Pérez ",
		Phone:  "555-0001",
		Email:  "juan@example.com",
		Cedula: "0102030405",
		Pets:   []PetInput{{Name: "Max", Species: "Perro"}, {Name: "Michi", Species: "Gato"}},
	})
	require.NoError(t, err)

	c := res.Client
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Juan Pérez", c.Name)
	assert.Equal(t, now, c.RegistrationDate)
	assert.Equal(t, now, c.CreatedAt)
	require.Len(t, c.Pets, 2)
	for _, p := range c.Pets {
		assert.Equal(t, c.ID, p.ClientID)
		assert.NotEmpty(t, p.ID)
	}

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Pets, 2)
}

func TestService_Register_RejectsMissingFields(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)

	cases := map[string]RegisterInput{
		"no name":       {Phone: "1", Pets: []PetInput{{Name: "Max", Species: "Perro"}}},
		"no phone":      {Name: "Ana", Pets: []PetInput{{Name: "Max", Species: "Perro"}}},
		"no pets":       {Name: "Ana", Phone: "1"},
		"pet no name":   {Name: "Ana", Phone: "1", Pets: []PetInput{{Species: "Perro"}}},
		"pet no specie": {Name: "Ana", Phone: "1", Pets: []PetInput{{Name: "Max", Species: "  "}}},
		"bad email":     {Name: "Ana", Phone: "1", Email: "not-an-email", Pets: []PetInput{{Name: "Max", Species: "Perro"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_Register_UnknownReferrer(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	in := validInput("Ana")
	in.ReferrerID = "ghost"
	_, err := svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrReferrerNotFound)
	assert.Empty(t, repo.byID)
}

func TestService_Register_WithReferrer_EvaluatesReferrer(t *testing.T) {
	repo := newTestRepo()
	ev := &testEvaluator{n: 1}
	svc := NewService(repo, ev, nil)

	referrer := mustRegister(t, svc, validInput("Referidor"))
	assert.Empty(t, ev.calls, "no referrer => no evaluation")

	in := validInput("Nuevo")
	in.ReferrerID = referrer.ID
	res, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{referrer.ID}, ev.calls)
	assert.Equal(t, 1, res.RewardsGranted)
	assert.Equal(t, referrer.ID, res.Client.ReferrerID)
}

func TestService_Register_EvaluationFailure_KeepsClient(t *testing.T) {
	repo := newTestRepo()
	boom := errors.New("rewards store down")
	svc := NewService(repo, &testEvaluator{err: boom}, nil)

	referrer := mustRegister(t, svc, validInput("Referidor"))

	in := validInput("Nuevo")
	in.ReferrerID = referrer.ID
	res, err := svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrRewardEvaluation)
	require.ErrorIs(t, err, boom)

	assert.NotEmpty(t, res.Client.ID)
	_, getErr := repo.GetByID(context.Background(), res.Client.ID)
	assert.NoError(t, getErr)
}

func TestService_Register_StoreFailure(t *testing.T) {
	repo := newTestRepo()
	repo.createErr = errors.New("insert failed")
	svc := NewService(repo, nil, nil)

	_, err := svc.Register(context.Background(), validInput("Ana"))
	require.ErrorIs(t, err, ErrStoreFailure)
}

func TestService_Register_PetsFailureLeavesNoClient(t *testing.T) {
	repo := newTestRepo()
	repo.petsErr = errors.New("pets insert failed")
	ev := &testEvaluator{}
	svc := NewService(repo, ev, nil)

	res, err := svc.Register(context.Background(), validInput("Ana"))
	require.ErrorIs(t, err, ErrStoreFailure)
	assert.Empty(t, res.Client.ID)
	assert.Empty(t, repo.byID)
	assert.Empty(t, ev.calls)

	// El reintento con el almacén sano crea un único cliente.
	repo.petsErr = nil
	c := mustRegister(t, svc, validInput("Ana"))
	assert.Len(t, repo.byID, 1)
	assert.Len(t, repo.byID[c.ID].Pets, 1)
}

func TestService_List_FiltersByNamePhoneCedula(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)

	a := validInput("Juan Pérez")
	a.Phone = "555-1111"
	b := validInput("María López")
	b.Phone = "555-2222"
	b.Cedula = "0912345678"
	mustRegister(t, svc, a)
	mustRegister(t, svc, b)

	items, err := svc.List(context.Background(), ListFilter{Query: "juan"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Juan Pérez", items[0].Name)

	items, err = svc.List(context.Background(), ListFilter{Query: "2222"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.List(context.Background(), ListFilter{Query: "091234"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "María López", items[0].Name)

	items, err = svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestService_UpdateContact(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)
	c := mustRegister(t, svc, validInput("Ana"))

	phone := "555-9999"
	email := "ana@example.com"
	updated, err := svc.UpdateContact(context.Background(), c.ID, UpdateContactInput{Phone: &phone, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "555-9999", updated.Phone)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.Equal(t, "Ana", updated.Name)

	blank := "  "
	_, err = svc.UpdateContact(context.Background(), c.ID, UpdateContactInput{Name: &blank})
	require.ErrorIs(t, err, ErrInvalidInput)

	bad := "nope"
	_, err = svc.UpdateContact(context.Background(), c.ID, UpdateContactInput{Email: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateContact(context.Background(), "ghost", UpdateContactInput{Phone: &phone})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_BlockedWithDirectReferral(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	parent := mustRegister(t, svc, validInput("Padre"))
	in := validInput("Hijo")
	in.ReferrerID = parent.ID
	child := mustRegister(t, svc, in)

	err := svc.Delete(context.Background(), parent.ID)
	require.ErrorIs(t, err, ErrHasReferrals)
	_, getErr := repo.GetByID(context.Background(), parent.ID)
	require.NoError(t, getErr)

	// sin referidos => se borra
	require.NoError(t, svc.Delete(context.Background(), child.ID))
	_, getErr = repo.GetByID(context.Background(), child.ID)
	require.ErrorIs(t, getErr, ErrNotFound)

	// ahora el padre ya no tiene referidos
	require.NoError(t, svc.Delete(context.Background(), parent.ID))
}

func TestService_Delete_Unknown(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)
	require.ErrorIs(t, svc.Delete(context.Background(), "ghost"), ErrNotFound)
}

func TestService_Referrals(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)

	a := mustRegister(t, svc, validInput("A"))
	in := validInput("B")
	in.ReferrerID = a.ID
	b := mustRegister(t, svc, in)
	in = validInput("C")
	in.ReferrerID = b.ID
	mustRegister(t, svc, in)

	sum, err := svc.Referrals(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.DirectCount)
	assert.Equal(t, 1, sum.SecondLevelCount)
	require.Len(t, sum.SecondLevel, 1)
	assert.Equal(t, "C", sum.SecondLevel[0].Name)

	_, err = svc.Referrals(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
