package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"clinic-referrals/internal/domain/visits"
)

type VisitsRepo struct {
	db *sql.DB
}

func NewVisitsRepo(db *sql.DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

func (r *VisitsRepo) Create(ctx context.Context, v visits.Visit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visits (
			id, client_id, pet_id,
			visit_date, reason, notes,
			recorded_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		v.ID,
		v.ClientID,
		v.PetID,
		v.VisitDate,
		v.Reason,
		v.Notes,
		v.RecordedBy,
		v.CreatedAt,
	)
	return err
}

func (r *VisitsRepo) ListByClient(ctx context.Context, clientID string, filter visits.ListFilter) ([]visits.Visit, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return []visits.Visit{}, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, client_id, pet_id,
			visit_date, reason, notes,
			recorded_by, created_at
		FROM visits
		WHERE client_id = $1
	`)

	args := []any{clientID}
	argN := 2

	if filter.PetID != "" {
		sb.WriteString(fmt.Sprintf(" AND pet_id = $%d", argN))
		args = append(args, filter.PetID)
		argN++
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND visit_date >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND visit_date <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY visit_date DESC, id ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]visits.Visit, 0)
	for rows.Next() {
		var v visits.Visit
		if err := rows.Scan(
			&v.ID,
			&v.ClientID,
			&v.PetID,
			&v.VisitDate,
			&v.Reason,
			&v.Notes,
			&v.RecordedBy,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, rows.Err()
}
