package rewards

import (
	"time"

	"clinic-referrals/internal/domain/clients"
	"clinic-referrals/internal/domain/referrals"

	"github.com/google/uuid"
)

// Umbrales por nivel: una recompensa DIRECT cada 3 referidos directos y una
// SECOND_LEVEL cada 6 referidos de segunda línea.
const (
	DirectThreshold      = 3
	SecondLevelThreshold = 6

	DirectDescription      = "Recompensa por 3 referidos directos"
	SecondLevelDescription = "Recompensa por 6 referidos en segunda línea"
)

// Evaluate calcula las recompensas nuevas que corresponden a clientID desde la
// última evaluación. No persiste nada: devuelve borradores PENDING listos para
// insertar en un solo lote.
//
// existing puede traer recompensas de otros clientes; solo cuentan las de clientID.
func Evaluate(clientID string, all []clients.Client, existing []Reward, now time.Time) ([]Reward, error) {
	if !referrals.Contains(clientID, all) {
		return nil, ErrNotFound
	}

	directCount := referrals.DirectCount(clientID, all)
	secondCount := referrals.SecondLevelCount(clientID, all)

	var d0, s0 int
	for _, r := range existing {
		if r.ClientID != clientID {
			continue
		}
		switch r.Type {
		case TypeDirect:
			d0++
		case TypeSecondLevel:
			s0++
		}
	}

	newDirect := directCount/DirectThreshold - d0
	newSecond := secondCount/SecondLevelThreshold - s0

	out := make([]Reward, 0, max(newDirect, 0)+max(newSecond, 0))
	for i := 0; i < newDirect; i++ {
		out = append(out, draft(clientID, TypeDirect, DirectDescription, now))
	}
	for i := 0; i < newSecond; i++ {
		out = append(out, draft(clientID, TypeSecondLevel, SecondLevelDescription, now))
	}
	return out, nil
}

func draft(clientID string, t Type, desc string, now time.Time) Reward {
	return Reward{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Type:        t,
		Status:      StatusPending,
		Description: desc,
		DateEarned:  now,
	}
}
