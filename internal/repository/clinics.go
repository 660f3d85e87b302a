package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// 指名医員の ID リストは jsonb カラムに保存する

func (r *Repository) CreateClinic(clinic *domain.Clinic) error {
	preferred, err := json.Marshal(clinic.PreferredDoctorIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO clinics (name, fee, frequency, preferred_doctor_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{clinic.Name, clinic.Fee, clinic.Frequency, preferred}
	dst := []any{&clinic.ID, &clinic.IsActive, &clinic.CreatedAt, &clinic.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllClinics(activeOnly bool) ([]*domain.Clinic, error) {
	query := `
		SELECT id, name, fee, frequency, preferred_doctor_ids, is_active, created_at, version
		FROM clinics
		WHERE is_active OR NOT $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clinics := []*domain.Clinic{}
	for rows.Next() {
		var clinic domain.Clinic
		var preferred []byte
		dst := []any{
			&clinic.ID,
			&clinic.Name,
			&clinic.Fee,
			&clinic.Frequency,
			&preferred,
			&clinic.IsActive,
			&clinic.CreatedAt,
			&clinic.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(preferred, &clinic.PreferredDoctorIDs); err != nil {
			return nil, err
		}
		clinics = append(clinics, &clinic)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clinics, nil
}

func (r *Repository) GetClinicByID(id int64) (*domain.Clinic, error) {
	query := `
		SELECT name, fee, frequency, preferred_doctor_ids, is_active, created_at, version
		FROM clinics
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	clinic := &domain.Clinic{ID: id}
	var preferred []byte
	dst := []any{
		&clinic.Name,
		&clinic.Fee,
		&clinic.Frequency,
		&preferred,
		&clinic.IsActive,
		&clinic.CreatedAt,
		&clinic.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(preferred, &clinic.PreferredDoctorIDs); err != nil {
		return nil, err
	}

	return clinic, nil
}

func (r *Repository) UpdateClinic(clinic *domain.Clinic) error {
	preferred, err := json.Marshal(clinic.PreferredDoctorIDs)
	if err != nil {
		return err
	}

	query := `
		UPDATE clinics
		SET name = $1, fee = $2, frequency = $3, preferred_doctor_ids = $4, is_active = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{clinic.Name, clinic.Fee, clinic.Frequency, preferred, clinic.IsActive, clinic.ID, clinic.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&clinic.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeactivateClinic(id int64) error {
	query := `
		UPDATE clinics SET is_active = FALSE, version = version + 1 WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
