package capabilities

import "context"

// CapabilityStaff: el usuario es staff autenticado de la clínica.
const CapabilityStaff = "clinic:staff"

// Resolver responde si un usuario tiene una capability.
// plansfeatures.Resolver lo implementa.
type Resolver interface {
	Has(ctx context.Context, userID string, capability string) (bool, error)
}
