package clients

import "time"

// Client representa a un cliente de la clínica (dueño de una o más mascotas).
type Client struct {
	ID string

	Name   string
	Phone  string
	Email  string // opcional
	Cedula string // opcional (documento nacional)

	RegistrationDate time.Time

	// ReferrerID es quien refirió a este cliente. Vacío = sin referidor.
	// No se modifica después del registro.
	ReferrerID string

	Pets []Pet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NodeKey y ReferrerKey permiten usar Client en el grafo de referidos.
func (c Client) NodeKey() string     { return c.ID }
func (c Client) ReferrerKey() string { return c.ReferrerID }

// Pet pertenece siempre a un único cliente.
type Pet struct {
	ID       string
	ClientID string

	Name    string
	Species string // texto libre ("Perro", "Gato", ...)
	Breed   string // opcional

	CreatedAt time.Time
}
