package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-referrals/internal/domain/rewards"
)

type RewardsRepo struct {
	db *sql.DB
}

func NewRewardsRepo(db *sql.DB) *RewardsRepo {
	return &RewardsRepo{db: db}
}

const rewardColumns = `
	id, client_id, type, status, description,
	date_earned, date_claimed, claimed_description`

// CreateBatch inserta el lote en una transacción: todas o ninguna.
func (r *RewardsRepo) CreateBatch(ctx context.Context, items []rewards.Reward) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rewards (`+rewardColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			it.ID,
			it.ClientID,
			string(it.Type),
			string(it.Status),
			it.Description,
			it.DateEarned,
			toNullTime(it.DateClaimed),
			it.ClaimedDescription,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *RewardsRepo) GetByID(ctx context.Context, id string) (rewards.Reward, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return rewards.Reward{}, rewards.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)
	it, err := scanReward(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rewards.Reward{}, rewards.ErrNotFound
		}
		return rewards.Reward{}, err
	}
	return it, nil
}

func (r *RewardsRepo) ListByClient(ctx context.Context, clientID string) ([]rewards.Reward, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rewardColumns+`
		FROM rewards
		WHERE client_id = $1
		ORDER BY date_earned DESC, id ASC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRewards(rows)
}

func (r *RewardsRepo) List(ctx context.Context, filter rewards.ListFilter) ([]rewards.Reward, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + rewardColumns + ` FROM rewards`)

	args := []any{}
	argN := 1
	if filter.Status != "" {
		sb.WriteString(fmt.Sprintf(" WHERE status = $%d", argN))
		args = append(args, string(filter.Status))
		argN++
	}
	sb.WriteString(" ORDER BY date_earned DESC, id ASC")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRewards(rows)
}

// Claim es un UPDATE condicional; dos reclamos concurrentes no pueden ganar ambos.
func (r *RewardsRepo) Claim(ctx context.Context, id string, claimedAt time.Time, description string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rewards
		SET status = 'CLAIMED', date_claimed = $2, claimed_description = $3
		WHERE id = $1 AND status = 'PENDING'
	`, id, claimedAt, description)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rewards WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("claim reward: %w", err)
	}
	if !exists {
		return rewards.ErrNotFound
	}
	return rewards.ErrClaimConflict
}

func scanReward(row rowScanner) (rewards.Reward, error) {
	var it rewards.Reward
	var typ, status string
	var claimed sql.NullTime
	if err := row.Scan(
		&it.ID,
		&it.ClientID,
		&typ,
		&status,
		&it.Description,
		&it.DateEarned,
		&claimed,
		&it.ClaimedDescription,
	); err != nil {
		return rewards.Reward{}, err
	}

	it.Type = rewards.Type(typ)
	it.Status = rewards.Status(status)
	if claimed.Valid {
		t := claimed.Time
		it.DateClaimed = &t
	}
	return it, nil
}

func scanRewards(rows *sql.Rows) ([]rewards.Reward, error) {
	out := make([]rewards.Reward, 0)
	for rows.Next() {
		it, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
