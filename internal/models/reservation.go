package models

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ativa"
	ReservationCancelled ReservationStatus = "cancelada"
	ReservationCompleted ReservationStatus = "concluida"
)

// reservationTransitions is the only set of status changes the ledger
// accepts. Anything else is a conflict.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationActive: {ReservationCancelled, ReservationCompleted},
}

// CanTransition reports whether a reservation may move from one status
// to another. Terminal statuses (cancelada, concluida) allow nothing.
func CanTransition(from, to ReservationStatus) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID        int               `json:"id"`
	VenueID   int               `json:"local_id"`
	UserID    string            `json:"user_id"`
	Date      string            `json:"data_reserva"`
	StartTime string            `json:"hora_inicio"`
	EndTime   string            `json:"hora_fim"`
	Status    ReservationStatus `json:"status"`
	Notes     string            `json:"observacoes,omitempty"`
	Total     float64           `json:"valor_total"`
	Rating    *int              `json:"avaliacao,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Filled by the list JOIN for the front end.
	VenueName    string `json:"local_nome,omitempty"`
	VenueAddress string `json:"local_endereco,omitempty"`
	VenueSport   string `json:"local_esporte,omitempty"`
}

type CreateReservationRequest struct {
	VenueID   int    `json:"local_id" validate:"required,gt=0"`
	Date      string `json:"data_reserva" validate:"required"`
	StartTime string `json:"hora_inicio" validate:"required"`
	EndTime   string `json:"hora_fim" validate:"required"`
	Notes     string `json:"observacoes"`
}

type RateReservationRequest struct {
	Rating int `json:"avaliacao" validate:"required,min=1,max=5"`
}
