package repository

import (
	"context"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (r *Repository) GetAllAffinities() ([]*domain.Affinity, error) {
	query := `
		SELECT doctor_id, clinic_id, level, created_at, version
		FROM affinities
		ORDER BY doctor_id, clinic_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	affinities := []*domain.Affinity{}
	for rows.Next() {
		var a domain.Affinity
		dst := []any{&a.DoctorID, &a.ClinicID, &a.Level, &a.CreatedAt, &a.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		affinities = append(affinities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return affinities, nil
}

// SetAffinity は (医員, 外勤先) の相性を upsert する
// ○（中立）は未設定と同義なので行を削除する
func (r *Repository) SetAffinity(a *domain.Affinity) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if a.Level == domain.AffinityNeutral {
		query := `
			DELETE FROM affinities WHERE doctor_id = $1 AND clinic_id = $2
		`
		if _, err := r.dbpool.ExecContext(ctx, query, a.DoctorID, a.ClinicID); err != nil {
			return err
		}
		return nil
	}

	query := `
		INSERT INTO affinities (doctor_id, clinic_id, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (doctor_id, clinic_id)
		DO UPDATE SET level = EXCLUDED.level, version = affinities.version + 1
		RETURNING created_at, version
	`

	params := []any{a.DoctorID, a.ClinicID, a.Level}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&a.CreatedAt, &a.Version); err != nil {
		return err
	}

	return nil
}
