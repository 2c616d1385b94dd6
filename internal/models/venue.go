package models

import "time"

type VenueStatus string

const (
	VenuePending  VenueStatus = "pendente"
	VenueApproved VenueStatus = "aprovado"
)

// Venue is a bookable sports location ("local"). Rejection is a hard
// delete, so only pendente and aprovado are ever persisted.
type Venue struct {
	ID           int         `json:"id"`
	OwnerID      string      `json:"user_id"`
	Name         string      `json:"nome"`
	Description  string      `json:"descricao,omitempty"`
	Address      string      `json:"endereco,omitempty"`
	Sport        string      `json:"esporte,omitempty"`
	HourlyRate   *float64    `json:"valor_hora,omitempty"`
	Availability string      `json:"disponibilidade,omitempty"`
	Phone        string      `json:"telefone,omitempty"`
	Photos       []string    `json:"fotos"`
	Status       VenueStatus `json:"status_aprovacao"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type CreateVenueRequest struct {
	Name         string   `json:"nome" validate:"required"`
	Description  string   `json:"descricao"`
	Address      string   `json:"endereco"`
	Sport        string   `json:"esporte"`
	HourlyRate   *float64 `json:"valor_hora" validate:"omitempty,gt=0"`
	Availability string   `json:"disponibilidade"`
	Phone        string   `json:"telefone"`
	Photos       []string `json:"fotos"`
}

type UpdateVenueRequest struct {
	Name         *string  `json:"nome,omitempty"`
	Description  *string  `json:"descricao,omitempty"`
	Address      *string  `json:"endereco,omitempty"`
	Sport        *string  `json:"esporte,omitempty"`
	HourlyRate   *float64 `json:"valor_hora,omitempty" validate:"omitempty,gt=0"`
	Availability *string  `json:"disponibilidade,omitempty"`
	Phone        *string  `json:"telefone,omitempty"`
	Photos       []string `json:"fotos,omitempty"`
}
