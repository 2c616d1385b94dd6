package models

import "time"

type NotificationKind string

const (
	NotifReservationCreated   NotificationKind = "reserva_criada"
	NotifReservationCancelled NotificationKind = "reserva_cancelada"
	NotifVenueApproved        NotificationKind = "local_aprovado"
	NotifVenueRejected        NotificationKind = "local_reprovado"
)

type Notification struct {
	ID        int              `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"tipo"`
	Message   string           `json:"mensagem"`
	Read      bool             `json:"lida"`
	CreatedAt time.Time        `json:"created_at"`
}
