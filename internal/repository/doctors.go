package repository

import (
	"context"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (r *Repository) CreateDoctor(doctor *domain.Doctor) error {
	query := `
		INSERT INTO doctors (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	dst := []any{&doctor.ID, &doctor.IsActive, &doctor.CreatedAt, &doctor.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, doctor.Name, doctor.Email, doctor.PasswordHash).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllDoctors(activeOnly bool) ([]*domain.Doctor, error) {
	query := `
		SELECT id, name, email, password_hash, is_active, created_at, version
		FROM doctors
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

	doctors := []*domain.Doctor{}
	for rows.Next() {
		var doctor domain.Doctor
		dst := []any{
			&doctor.ID,
			&doctor.Name,
			&doctor.Email,
			&doctor.PasswordHash,
			&doctor.IsActive,
			&doctor.CreatedAt,
			&doctor.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		doctors = append(doctors, &doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return doctors, nil
}

func (r *Repository) GetDoctorByID(id int64) (*domain.Doctor, error) {
	query := `
		SELECT name, email, password_hash, is_active, created_at, version
		FROM doctors
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	doctor := &domain.Doctor{ID: id}
	dst := []any{
		&doctor.Name,
		&doctor.Email,
		&doctor.PasswordHash,
		&doctor.IsActive,
		&doctor.CreatedAt,
		&doctor.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return doctor, nil
}

func (r *Repository) GetDoctorByEmail(email string) (*domain.Doctor, error) {
	query := `
		SELECT id, name, password_hash, is_active, created_at, version
		FROM doctors
		WHERE email = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	doctor := &domain.Doctor{Email: email}
	dst := []any{
		&doctor.ID,
		&doctor.Name,
		&doctor.PasswordHash,
		&doctor.IsActive,
		&doctor.CreatedAt,
		&doctor.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return doctor, nil
}

func (r *Repository) UpdateDoctor(doctor *domain.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, email = $2, is_active = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{doctor.Name, doctor.Email, doctor.IsActive, doctor.ID, doctor.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&doctor.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateDoctorPassword(doctor *domain.Doctor) error {
	query := `
		UPDATE doctors
		SET password_hash = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{doctor.PasswordHash, doctor.ID, doctor.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&doctor.Version); err != nil {
		return err
	}

	return nil
}

// DeactivateDoctor は論理削除。確定済みスケジュール内の過去の割り当ては保持される
func (r *Repository) DeactivateDoctor(id int64) error {
	query := `
		UPDATE doctors SET is_active = FALSE, version = version + 1 WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
