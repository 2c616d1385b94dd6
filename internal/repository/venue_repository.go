package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/models"
)

type VenueRepository interface {
	Create(ctx context.Context, venue *models.Venue) error
	GetByID(ctx context.Context, id int) (*models.Venue, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*models.Venue, error)
	CountApproved(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Venue, error)
	ListPending(ctx context.Context) ([]*models.Venue, error)
	Update(ctx context.Context, id int, req *models.UpdateVenueRequest) (*models.Venue, error)
	Delete(ctx context.Context, id int) error
	Approve(ctx context.Context, id int) (*models.Venue, error)
	Reject(ctx context.Context, id int) (*models.Venue, error)
}

type venueRepository struct {
	db *sql.DB
}

func NewVenueRepository(db *sql.DB) VenueRepository {
	return &venueRepository{db: db}
}

const venueColumns = `id, user_id, nome, descricao, endereco, esporte, valor_hora,
	disponibilidade, telefone, fotos, status_aprovacao, created_at, updated_at`

func scanVenue(row interface{ Scan(...any) error }) (*models.Venue, error) {
	var v models.Venue
	var rate sql.NullFloat64
	var photos pq.StringArray
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Name, &v.Description, &v.Address, &v.Sport, &rate,
		&v.Availability, &v.Phone, &photos, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rate.Valid {
		v.HourlyRate = &rate.Float64
	}
	v.Photos = []string(photos)
	if v.Photos == nil {
		v.Photos = []string{}
	}
	return &v, nil
}

func (r *venueRepository) Create(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO locais (user_id, nome, descricao, endereco, esporte, valor_hora,
			disponibilidade, telefone, fotos, status_aprovacao, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pendente', $10, $10)
		RETURNING id
	`

	now := time.Now().UTC()
	var rate any
	if venue.HourlyRate != nil {
		rate = *venue.HourlyRate
	}
	err := r.db.QueryRowContext(ctx, query,
		venue.OwnerID, venue.Name, venue.Description, venue.Address, venue.Sport, rate,
		venue.Availability, venue.Phone, pq.Array(venue.Photos), now,
	).Scan(&venue.ID)
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}

	venue.Status = models.VenuePending
	venue.CreatedAt = now
	venue.UpdatedAt = now
	if venue.Photos == nil {
		venue.Photos = []string{}
	}
	return nil
}

func (r *venueRepository) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM locais WHERE id = $1`

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("venue_not_found", "Local não encontrado")
		}
		return nil, fmt.Errorf("get venue by id: %w", err)
	}
	return v, nil
}

func (r *venueRepository) ListApproved(ctx context.Context, limit, offset int) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM locais WHERE status_aprovacao = 'aprovado'
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *venueRepository) CountApproved(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM locais WHERE status_aprovacao = 'aprovado'").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return count, nil
}

func (r *venueRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM locais WHERE user_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *venueRepository) ListPending(ctx context.Context) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM locais WHERE status_aprovacao = 'pendente'
		ORDER BY created_at ASC`
	return r.list(ctx, query)
}

func (r *venueRepository) list(ctx context.Context, query string, args ...any) ([]*models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	venues := []*models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *venueRepository) Update(ctx context.Context, id int, req *models.UpdateVenueRequest) (*models.Venue, error) {
	query := `
		UPDATE locais
		SET nome = COALESCE($1, nome),
			descricao = COALESCE($2, descricao),
			endereco = COALESCE($3, endereco),
			esporte = COALESCE($4, esporte),
			valor_hora = COALESCE($5, valor_hora),
			disponibilidade = COALESCE($6, disponibilidade),
			telefone = COALESCE($7, telefone),
			fotos = COALESCE($8, fotos),
			updated_at = $9
		WHERE id = $10
		RETURNING ` + venueColumns

	var photos any
	if req.Photos != nil {
		photos = pq.Array(req.Photos)
	}
	v, err := scanVenue(r.db.QueryRowContext(ctx, query,
		req.Name, req.Description, req.Address, req.Sport, req.HourlyRate,
		req.Availability, req.Phone, photos, time.Now().UTC(), id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("venue_not_found", "Local não encontrado")
		}
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return v, nil
}

func (r *venueRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM locais WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("venue_not_found", "Local não encontrado")
	}
	return nil
}

// Approve flips a pending venue to aprovado. The status predicate in
// the UPDATE makes approval terminal: a second call matches no row.
func (r *venueRepository) Approve(ctx context.Context, id int) (*models.Venue, error) {
	query := `
		UPDATE locais
		SET status_aprovacao = 'aprovado', updated_at = $1
		WHERE id = $2 AND status_aprovacao = 'pendente'
		RETURNING ` + venueColumns

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, time.Now().UTC(), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.pendingMiss(ctx, id)
		}
		return nil, fmt.Errorf("approve venue: %w", err)
	}
	return v, nil
}

// Reject removes a pending venue outright. The front-end contract
// treats rejection as deletion, not archival.
func (r *venueRepository) Reject(ctx context.Context, id int) (*models.Venue, error) {
	query := `
		DELETE FROM locais
		WHERE id = $1 AND status_aprovacao = 'pendente'
		RETURNING ` + venueColumns

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.pendingMiss(ctx, id)
		}
		return nil, fmt.Errorf("reject venue: %w", err)
	}
	return v, nil
}

// pendingMiss distinguishes an absent venue from one already decided.
func (r *venueRepository) pendingMiss(ctx context.Context, id int) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM locais WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check venue exists: %w", err)
	}
	if exists {
		return apperrors.Conflict("not_pending", "Local já foi avaliado")
	}
	return apperrors.NotFound("venue_not_found", "Local não encontrado")
}
