package visits

import "time"

// Visit es una consulta registrada para una mascota de un cliente.
type Visit struct {
	ID       string
	ClientID string
	PetID    string

	VisitDate time.Time
	Reason    string
	Notes     string

	// RecordedBy es el usuario de staff que la registró.
	RecordedBy string
	CreatedAt  time.Time
}
