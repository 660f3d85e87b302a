package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// 日付セット・希望外勤先は jsonb カラムに保存する

func scanPreferenceJSON(p *domain.Preference, ngDates, avoidDates, preferredClinics []byte) error {
	if err := json.Unmarshal(ngDates, &p.NGDates); err != nil {
		return err
	}
	if err := json.Unmarshal(avoidDates, &p.AvoidDates); err != nil {
		return err
	}
	if err := json.Unmarshal(preferredClinics, &p.PreferredClinicIDs); err != nil {
		return err
	}
	return nil
}

func (r *Repository) GetPreference(doctorID int64, yearMonth string) (*domain.Preference, error) {
	query := `
		SELECT id, ng_dates, avoid_dates, preferred_clinic_ids, created_at, version
		FROM preferences
		WHERE doctor_id = $1 AND year_month = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := &domain.Preference{DoctorID: doctorID, YearMonth: yearMonth}
	var ngDates, avoidDates, preferredClinics []byte
	dst := []any{&p.ID, &ngDates, &avoidDates, &preferredClinics, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, doctorID, yearMonth).Scan(dst...); err != nil {
		return nil, err
	}
	if err := scanPreferenceJSON(p, ngDates, avoidDates, preferredClinics); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) GetAllPreferences(yearMonth string) ([]*domain.Preference, error) {
	query := `
		SELECT id, doctor_id, ng_dates, avoid_dates, preferred_clinic_ids, created_at, version
		FROM preferences
		WHERE year_month = $1
		ORDER BY doctor_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := []*domain.Preference{}
	for rows.Next() {
		p := &domain.Preference{YearMonth: yearMonth}
		var ngDates, avoidDates, preferredClinics []byte
		dst := []any{&p.ID, &p.DoctorID, &ngDates, &avoidDates, &preferredClinics, &p.CreatedAt, &p.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := scanPreferenceJSON(p, ngDates, avoidDates, preferredClinics); err != nil {
			return nil, err
		}
		preferences = append(preferences, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

// UpsertPreference は (医員, 対象月) の希望を upsert する
// 再提出は蓄積ではなく全置換になる
func (r *Repository) UpsertPreference(p *domain.Preference) error {
	ngDates, err := json.Marshal(p.NGDates)
	if err != nil {
		return err
	}
	avoidDates, err := json.Marshal(p.AvoidDates)
	if err != nil {
		return err
	}
	preferredClinics, err := json.Marshal(p.PreferredClinicIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO preferences (doctor_id, year_month, ng_dates, avoid_dates, preferred_clinic_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, year_month)
		DO UPDATE SET
			ng_dates = EXCLUDED.ng_dates,
			avoid_dates = EXCLUDED.avoid_dates,
			preferred_clinic_ids = EXCLUDED.preferred_clinic_ids,
			version = preferences.version + 1
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{p.DoctorID, p.YearMonth, ngDates, avoidDates, preferredClinics}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	return nil
}
