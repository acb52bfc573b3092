package clients

import "context"

// Repository es el almacén de clientes y mascotas.
// Las implementaciones devuelven ErrNotFound / ErrHasReferrals tal cual.
type Repository interface {
	Create(ctx context.Context, c Client) error
	CreatePets(ctx context.Context, clientID string, pets []Pet) error
	GetByID(ctx context.Context, id string) (Client, error)
	// List devuelve los clientes con sus mascotas, ordenados por nombre.
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	Update(ctx context.Context, c Client) error
	// Delete solo borra si el cliente no tiene referidos directos.
	Delete(ctx context.Context, id string) error
}

type ListFilter struct {
	// Query busca (sin mayúsculas) en nombre, teléfono y cédula.
	Query string
}
