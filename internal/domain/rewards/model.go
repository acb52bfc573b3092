package rewards

import "time"

type Type string

const (
	TypeDirect      Type = "DIRECT"
	TypeSecondLevel Type = "SECOND_LEVEL"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusClaimed Status = "CLAIMED"
)

// Reward se crea solo desde el motor de elegibilidad y solo cambia al
// reclamarse (PENDING -> CLAIMED, sin vuelta atrás).
type Reward struct {
	ID       string
	ClientID string

	Type        Type
	Status      Status
	Description string

	DateEarned         time.Time
	DateClaimed        *time.Time
	ClaimedDescription string
}
