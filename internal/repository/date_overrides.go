package repository

import (
	"context"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (r *Repository) GetDateOverrides(yearMonth string) ([]*domain.DateOverride, error) {
	query := `
		SELECT id, clinic_id, duty_date, required_doctors, created_at, version
		FROM date_overrides
		WHERE duty_date LIKE $1 || '-%'
		ORDER BY clinic_id, duty_date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := []*domain.DateOverride{}
	for rows.Next() {
		var o domain.DateOverride
		dst := []any{&o.ID, &o.ClinicID, &o.Date, &o.RequiredDoctors, &o.CreatedAt, &o.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		overrides = append(overrides, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overrides, nil
}

// SetDateOverride は (外勤先, 日付) の必要医員数を upsert する
// 1（通常）は未設定と同義なので行を削除する
func (r *Repository) SetDateOverride(o *domain.DateOverride) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if o.RequiredDoctors == 1 {
		query := `
			DELETE FROM date_overrides WHERE clinic_id = $1 AND duty_date = $2
		`
		if _, err := r.dbpool.ExecContext(ctx, query, o.ClinicID, o.Date); err != nil {
			return err
		}
		return nil
	}

	query := `
		INSERT INTO date_overrides (clinic_id, duty_date, required_doctors)
		VALUES ($1, $2, $3)
		ON CONFLICT (clinic_id, duty_date)
		DO UPDATE SET required_doctors = EXCLUDED.required_doctors, version = date_overrides.version + 1
		RETURNING id, created_at, version
	`

	params := []any{o.ClinicID, o.Date, o.RequiredDoctors}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&o.ID, &o.CreatedAt, &o.Version); err != nil {
		return err
	}

	return nil
}
