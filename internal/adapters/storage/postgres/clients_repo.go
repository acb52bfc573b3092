package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clinic-referrals/internal/domain/clients"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

const clientColumns = `
	c.id, c.name, c.phone, c.email, c.cedula,
	c.registration_date, COALESCE(c.referrer_id, ''),
	c.created_at, c.updated_at`

const petColumns = `
	p.id, p.client_id, p.name, p.species, p.breed, p.created_at`

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, name, phone, email, cedula,
			registration_date, referrer_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Cedula,
		c.RegistrationDate,
		toNullString(c.ReferrerID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// CreatePets inserta las mascotas en una transacción.
func (r *ClientsRepo) CreatePets(ctx context.Context, clientID string, pets []clients.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range pets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pets (id, client_id, name, species, breed, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, p.ID, clientID, p.Name, p.Species, p.Breed, p.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return clients.Client{}, clients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients c WHERE c.id = $1`, id)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clients.Client{}, clients.ErrNotFound
		}
		return clients.Client{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets p
		WHERE p.client_id = $1
		ORDER BY p.created_at ASC, p.id ASC
	`, id)
	if err != nil {
		return clients.Client{}, err
	}
	defer rows.Close()

	c.Pets = make([]clients.Pet, 0)
	for rows.Next() {
		var p clients.Pet
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.Species, &p.Breed, &p.CreatedAt); err != nil {
			return clients.Client{}, err
		}
		c.Pets = append(c.Pets, p)
	}
	return c, rows.Err()
}

// List trae clientes y mascotas en una sola consulta (LEFT JOIN) y arma el agregado.
func (r *ClientsRepo) List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + clientColumns + `,
			p.id, p.client_id, p.name, p.species, p.breed, p.created_at
		FROM clients c
		LEFT JOIN pets p ON p.client_id = c.id
	`)

	args := []any{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(` WHERE (c.name ILIKE $1 ESCAPE '\' OR c.phone ILIKE $1 ESCAPE '\' OR c.cedula ILIKE $1 ESCAPE '\')`)
		args = append(args, containsPattern(q))
	}
	sb.WriteString(" ORDER BY c.name ASC, c.id ASC, p.created_at ASC, p.id ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	index := map[string]int{}
	for rows.Next() {
		var c clients.Client
		var (
			petID, petClientID, petName, petSpecies, petBreed sql.NullString
			petCreatedAt                                      sql.NullTime
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.Cedula,
			&c.RegistrationDate, &c.ReferrerID,
			&c.CreatedAt, &c.UpdatedAt,
			&petID, &petClientID, &petName, &petSpecies, &petBreed, &petCreatedAt,
		); err != nil {
			return nil, err
		}

		i, ok := index[c.ID]
		if !ok {
			c.Pets = make([]clients.Pet, 0)
			out = append(out, c)
			i = len(out) - 1
			index[c.ID] = i
		}
		if petID.Valid {
			out[i].Pets = append(out[i].Pets, clients.Pet{
				ID:        petID.String,
				ClientID:  petClientID.String,
				Name:      petName.String,
				Species:   petSpecies.String,
				Breed:     petBreed.String,
				CreatedAt: petCreatedAt.Time,
			})
		}
	}
	return out, rows.Err()
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET
			name = $2,
			phone = $3,
			email = $4,
			cedula = $5,
			updated_at = $6
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Cedula,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clients.ErrNotFound
	}
	return nil
}

// Delete borra solo si nadie lo tiene como referidor. Mascotas, recompensas y
// visitas caen por ON DELETE CASCADE.
func (r *ClientsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM clients
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM clients x WHERE x.referrer_id = $1)
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// 0 filas: o no existe o tiene referidos.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if !exists {
		return clients.ErrNotFound
	}
	return clients.ErrHasReferrals
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (clients.Client, error) {
	var c clients.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Cedula,
		&c.RegistrationDate, &c.ReferrerID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern arma un patrón ILIKE "contiene q" con q literal
// (% y _ no actúan como comodines).
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// referrer_id vacío se guarda como NULL (FK).
func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
