package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/models"
)

// ReservationFilter scopes a listing to the caller's visibility: a
// plain user sees their own rows, an owner the rows on their venues,
// an admin everything. VenueIDs narrows any of the three.
type ReservationFilter struct {
	UserID   string
	OwnerID  string
	VenueIDs []int
}

type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) (venueOwnerID string, err error)
	GetByID(ctx context.Context, id int) (*models.Reservation, string, error)
	Cancel(ctx context.Context, id int) error
	Rate(ctx context.Context, id int, rating int) error
	List(ctx context.Context, filter ReservationFilter) ([]*models.Reservation, error)
	CompleteElapsed(ctx context.Context) (int64, error)
}

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create runs the overlap check and insert as one transaction. The
// SELECT ... FOR UPDATE on the venue row serializes concurrent booking
// attempts per venue, so two overlapping requests cannot both pass the
// check.
func (r *reservationRepository) Create(ctx context.Context, res *models.Reservation) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	var rate sql.NullFloat64
	var status models.VenueStatus
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, valor_hora, status_aprovacao
		FROM locais WHERE id = $1
		FOR UPDATE
	`, res.VenueID).Scan(&ownerID, &rate, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperrors.NotFound("venue_not_found", "Local não encontrado")
		}
		return "", fmt.Errorf("lock venue: %w", err)
	}
	if status != models.VenueApproved {
		return "", apperrors.NotFound("venue_not_found", "Local não encontrado")
	}

	var overlaps bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM reservas
			WHERE local_id = $1
			  AND data_reserva = $2
			  AND status = 'ativa'
			  AND hora_inicio < $4
			  AND hora_fim > $3
		)
	`, res.VenueID, res.Date, res.StartTime, res.EndTime).Scan(&overlaps)
	if err != nil {
		return "", fmt.Errorf("check overlap: %w", err)
	}
	if overlaps {
		return "", apperrors.Conflict("horario_indisponivel", "Horário já reservado para este local")
	}

	res.Total = 0
	if rate.Valid {
		res.Total = rate.Float64 * durationHours(res.StartTime, res.EndTime)
	}

	now := time.Now().UTC()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reservas (local_id, user_id, data_reserva, hora_inicio, hora_fim,
			status, observacoes, valor_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'ativa', $6, $7, $8, $8)
		RETURNING id
	`, res.VenueID, res.UserID, res.Date, res.StartTime, res.EndTime,
		res.Notes, res.Total, now,
	).Scan(&res.ID)
	if err != nil {
		return "", fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit reservation: %w", err)
	}

	res.Status = models.ReservationActive
	res.CreatedAt = now
	res.UpdatedAt = now
	return ownerID, nil
}

// durationHours computes the booked span from zero-padded HH:MM
// strings already validated by the handler.
func durationHours(start, end string) float64 {
	return float64(minutesOf(end)-minutesOf(start)) / 60.0
}

func minutesOf(hhmm string) int {
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	return h*60 + m
}

const reservationColumns = `r.id, r.local_id, r.user_id,
	to_char(r.data_reserva, 'YYYY-MM-DD'), r.hora_inicio, r.hora_fim,
	r.status, r.observacoes, r.valor_total, r.avaliacao,
	r.created_at, r.updated_at, l.nome, l.endereco, l.esporte`

func scanReservation(row interface{ Scan(...any) error }, extra ...any) (*models.Reservation, error) {
	var res models.Reservation
	var rating sql.NullInt64
	dest := []any{
		&res.ID, &res.VenueID, &res.UserID, &res.Date, &res.StartTime, &res.EndTime,
		&res.Status, &res.Notes, &res.Total, &rating,
		&res.CreatedAt, &res.UpdatedAt, &res.VenueName, &res.VenueAddress, &res.VenueSport,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if rating.Valid {
		n := int(rating.Int64)
		res.Rating = &n
	}
	return &res, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int) (*models.Reservation, string, error) {
	query := `
		SELECT ` + reservationColumns + `, l.user_id
		FROM reservas r
		JOIN locais l ON l.id = r.local_id
		WHERE r.id = $1
	`

	var venueOwnerID string
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id), &venueOwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", apperrors.NotFound("reservation_not_found", "Reserva não encontrada")
		}
		return nil, "", fmt.Errorf("get reservation: %w", err)
	}
	return res, venueOwnerID, nil
}

// Cancel moves an active reservation to cancelada. History is kept;
// a terminal reservation stays as it is.
func (r *reservationRepository) Cancel(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reservas
		SET status = 'cancelada', updated_at = $1
		WHERE id = $2 AND status = 'ativa'
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.Conflict("reserva_encerrada", "Reserva já encerrada")
	}
	return nil
}

// Rate writes the rating exactly once: the predicate only matches a
// completed, unrated row.
func (r *reservationRepository) Rate(ctx context.Context, id int, rating int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reservas
		SET avaliacao = $1, updated_at = $2
		WHERE id = $3 AND status = 'concluida' AND avaliacao IS NULL
	`, rating, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rate reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.Conflict("avaliacao_indisponivel", "Reserva não pode ser avaliada")
	}
	return nil
}

func (r *reservationRepository) List(ctx context.Context, filter ReservationFilter) ([]*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservas r
		JOIN locais l ON l.id = r.local_id
	`

	var conds []string
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if len(filter.VenueIDs) > 0 {
		args = append(args, pq.Array(filter.VenueIDs))
		conds = append(conds, fmt.Sprintf("r.local_id = ANY($%d)", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.data_reserva DESC, r.hora_inicio DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*models.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// CompleteElapsed flips active reservations whose slot has passed to
// concluida. Runs lazily before listings; a completed reservation is
// what unlocks rating.
func (r *reservationRepository) CompleteElapsed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reservas
		SET status = 'concluida', updated_at = NOW()
		WHERE status = 'ativa'
		  AND (data_reserva < CURRENT_DATE
			OR (data_reserva = CURRENT_DATE AND hora_fim <= to_char(NOW(), 'HH24:MI')))
	`)
	if err != nil {
		return 0, fmt.Errorf("complete elapsed reservations: %w", err)
	}
	return res.RowsAffected()
}
