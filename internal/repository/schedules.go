package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

// 割り当て（スロット→医員リスト）は jsonb カラムに保存する

func (r *Repository) CreateSchedule(s *domain.Schedule) error {
	assignments, err := json.Marshal(s.Assignments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO schedules (year_month, plan_name, profile, assignments, total_variance, satisfaction_score, is_optimal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_confirmed, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{s.YearMonth, s.PlanName, s.Profile, assignments, s.TotalVariance, s.SatisfactionScore, s.IsOptimal}
	dst := []any{&s.ID, &s.IsConfirmed, &s.CreatedAt, &s.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func scanScheduleRows(rows *sql.Rows) ([]*domain.Schedule, error) {
	schedules := []*domain.Schedule{}
	for rows.Next() {
		var s domain.Schedule
		var assignments []byte
		dst := []any{
			&s.ID,
			&s.YearMonth,
			&s.PlanName,
			&s.Profile,
			&assignments,
			&s.TotalVariance,
			&s.SatisfactionScore,
			&s.IsOptimal,
			&s.IsConfirmed,
			&s.CreatedAt,
			&s.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(assignments, &s.Assignments); err != nil {
			return nil, err
		}
		schedules = append(schedules, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) GetSchedulesByMonth(yearMonth string) ([]*domain.Schedule, error) {
	query := `
		SELECT id, year_month, plan_name, profile, assignments, total_variance, satisfaction_score, is_optimal, is_confirmed, created_at, version
		FROM schedules
		WHERE year_month = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduleRows(rows)
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	query := `
		SELECT year_month, plan_name, profile, assignments, total_variance, satisfaction_score, is_optimal, is_confirmed, created_at, version
		FROM schedules
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	s := &domain.Schedule{ID: id}
	var assignments []byte
	dst := []any{
		&s.YearMonth,
		&s.PlanName,
		&s.Profile,
		&assignments,
		&s.TotalVariance,
		&s.SatisfactionScore,
		&s.IsOptimal,
		&s.IsConfirmed,
		&s.CreatedAt,
		&s.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assignments, &s.Assignments); err != nil {
		return nil, err
	}

	return s, nil
}

// GetConfirmedSchedulesBefore は対象月より前の確定スケジュールを返す
// （報酬ばらつき項の前月までの累計計算に使う）
func (r *Repository) GetConfirmedSchedulesBefore(yearMonth string) ([]*domain.Schedule, error) {
	query := `
		SELECT id, year_month, plan_name, profile, assignments, total_variance, satisfaction_score, is_optimal, is_confirmed, created_at, version
		FROM schedules
		WHERE is_confirmed AND year_month < $1
		ORDER BY year_month, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScheduleRows(rows)
}

// ConfirmSchedule は指定案を確定にする。同月の他の案の確定は同時に解除される
func (r *Repository) ConfirmSchedule(s *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	unconfirm := `
		UPDATE schedules SET is_confirmed = FALSE, version = version + 1
		WHERE year_month = $1 AND is_confirmed AND id <> $2
	`
	if _, err := tx.ExecContext(ctx, unconfirm, s.YearMonth, s.ID); err != nil {
		return err
	}

	confirm := `
		UPDATE schedules SET is_confirmed = TRUE, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, confirm, s.ID, s.Version).Scan(&s.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.IsConfirmed = true
	return nil
}

// UpdateScheduleAssignments は手動調整後の割り当てと再計算済み統計を保存する
func (r *Repository) UpdateScheduleAssignments(s *domain.Schedule) error {
	assignments, err := json.Marshal(s.Assignments)
	if err != nil {
		return err
	}

	query := `
		UPDATE schedules
		SET assignments = $1, total_variance = $2, satisfaction_score = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{assignments, s.TotalVariance, s.SatisfactionScore, s.ID, s.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&s.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSchedule(id int64) error {
	query := `
		DELETE FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// DeleteSchedulesBefore は古い月の未確定・確定スケジュールをまとめて削除する
func (r *Repository) DeleteSchedulesBefore(yearMonth string) (int64, error) {
	query := `
		DELETE FROM schedules WHERE year_month < $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, yearMonth)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
