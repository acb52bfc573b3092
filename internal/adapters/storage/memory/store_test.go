package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-referrals/internal/domain/clients"
	"clinic-referrals/internal/domain/rewards"
	"clinic-referrals/internal/domain/visits"
)

func seedClient(t *testing.T, repo clients.Repository, id, name, referrer string) {
	t.Helper()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(context.Background(), clients.Client{
		ID: id, Name: name, Phone: "555-" + id, ReferrerID: referrer,
		RegistrationDate: now, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.CreatePets(context.Background(), id, []clients.Pet{
		{ID: "pet-" + id, ClientID: id, Name: "Firulais", Species: "Perro", CreatedAt: now},
	}))
}

func TestClients_ListFiltersAndSortsByName(t *testing.T) {
	s := NewStore()
	repo := s.Clients()
	seedClient(t, repo, "c1", "Zoe", "")
	seedClient(t, repo, "c2", "Ana", "c1")
	seedClient(t, repo, "c3", "Mario", "c1")

	all, err := repo.List(context.Background(), clients.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Ana", "Mario", "Zoe"}, []string{all[0].Name, all[1].Name, all[2].Name})
	assert.Len(t, all[0].Pets, 1)

	got, err := repo.List(context.Background(), clients.ListFilter{Query: "555-C3"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].ID)
}

func TestClients_DeleteBlockedByReferralsAndCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Clients()
	seedClient(t, repo, "c1", "Zoe", "")
	seedClient(t, repo, "c2", "Ana", "c1")

	now := time.Now().UTC()
	require.NoError(t, s.Rewards().CreateBatch(ctx, []rewards.Reward{
		{ID: "r1", ClientID: "c2", Type: rewards.TypeDirect, Status: rewards.StatusPending, DateEarned: now},
	}))
	require.NoError(t, s.Visits().Create(ctx, visits.Visit{ID: "v1", ClientID: "c2", PetID: "pet-c2", VisitDate: now}))

	assert.ErrorIs(t, repo.Delete(ctx, "c1"), clients.ErrHasReferrals)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), clients.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "c2"))
	_, err := s.Rewards().GetByID(ctx, "r1")
	assert.ErrorIs(t, err, rewards.ErrNotFound)
	vs, err := s.Visits().ListByClient(ctx, "c2", visits.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, vs)

	// c1 ya no tiene referidos.
	require.NoError(t, repo.Delete(ctx, "c1"))
}

func TestClients_UpdateKeepsReferrer(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Clients()
	seedClient(t, repo, "c1", "Zoe", "")
	seedClient(t, repo, "c2", "Ana", "c1")

	require.NoError(t, repo.Update(ctx, clients.Client{ID: "c2", Name: "Ana María", Phone: "123", ReferrerID: ""}))
	got, err := repo.GetByID(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.Equal(t, "c1", got.ReferrerID)
}

func TestRewards_CreateBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedClient(t, s.Clients(), "c1", "Zoe", "")

	now := time.Now().UTC()
	err := s.Rewards().CreateBatch(ctx, []rewards.Reward{
		{ID: "r1", ClientID: "c1", Status: rewards.StatusPending, DateEarned: now},
		{ID: "r2", ClientID: "missing", Status: rewards.StatusPending, DateEarned: now},
	})
	require.Error(t, err)

	got, err := s.Rewards().ListByClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRewards_ClaimOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedClient(t, s.Clients(), "c1", "Zoe", "")
	require.NoError(t, s.Rewards().CreateBatch(ctx, []rewards.Reward{
		{ID: "r1", ClientID: "c1", Type: rewards.TypeDirect, Status: rewards.StatusPending, DateEarned: time.Now()},
	}))

	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Rewards().Claim(ctx, "r1", at, "Baño gratis"))
	assert.ErrorIs(t, s.Rewards().Claim(ctx, "r1", at, "otra vez"), rewards.ErrClaimConflict)
	assert.ErrorIs(t, s.Rewards().Claim(ctx, "r9", at, "x"), rewards.ErrNotFound)

	got, err := s.Rewards().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, rewards.StatusClaimed, got.Status)
	require.NotNil(t, got.DateClaimed)
	assert.True(t, got.DateClaimed.Equal(at))
	assert.Equal(t, "Baño gratis", got.ClaimedDescription)

	pending, err := s.Rewards().List(ctx, rewards.ListFilter{Status: rewards.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestVisits_NewestFirstWithFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedClient(t, s.Clients(), "c1", "Zoe", "")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"v1", "v2", "v3"} {
		require.NoError(t, s.Visits().Create(ctx, visits.Visit{
			ID: id, ClientID: "c1", PetID: "pet-c1", VisitDate: base.AddDate(0, 0, i),
		}))
	}

	got, err := s.Visits().ListByClient(ctx, "c1", visits.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "v3", got[0].ID)

	from := base.AddDate(0, 0, 1)
	got, err = s.Visits().ListByClient(ctx, "c1", visits.ListFilter{From: &from, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v3", got[0].ID)
}

func TestVisits_SameDateOrderedByID(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedClient(t, s.Clients(), "c1", "Zoe", "")

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"v-c", "v-a", "v-d", "v-b"} {
		require.NoError(t, s.Visits().Create(ctx, visits.Visit{
			ID: id, ClientID: "c1", PetID: "pet-c1", VisitDate: day,
		}))
	}

	// Varias lecturas: el orden no depende de la iteración del map.
	for i := 0; i < 5; i++ {
		got, err := s.Visits().ListByClient(ctx, "c1", visits.ListFilter{})
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, v := range got {
			ids = append(ids, v.ID)
		}
		assert.Equal(t, []string{"v-a", "v-b", "v-c", "v-d"}, ids)
	}

	got, err := s.Visits().ListByClient(ctx, "c1", visits.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v-a", got[0].ID)
	assert.Equal(t, "v-b", got[1].ID)
}
