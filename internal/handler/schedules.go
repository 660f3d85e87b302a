package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/optimizer"
	"github.com/hmatsu88yama/scheduler/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
)

func (h *Handler) GetSchedulesByMonth(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))

	schedules, err := h.repository.GetSchedulesByMonth(yearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 医員には確定済みの案だけ見せる
	if role != domain.RoleAdmin {
		confirmed := []*domain.Schedule{}
		for _, s := range schedules {
			if s.IsConfirmed {
				confirmed = append(confirmed, s)
			}
		}
		schedules = confirmed
	}

	h.successResponse(w, r, "スケジュール一覧を取得しました", schedules)
}

// buildOptimizerInput は対象月の入力スナップショットを組み立てる
// 前月までの累計報酬は確定スケジュールから逆算する
func (h *Handler) buildOptimizerInput(yearMonth string) (*optimizer.Input, error) {
	month, err := time.Parse(domain.MonthLayout, yearMonth)
	if err != nil {
		return nil, err
	}

	doctors, err := h.repository.GetAllDoctors(false)
	if err != nil {
		return nil, err
	}

	clinics, err := h.repository.GetAllClinics(false)
	if err != nil {
		return nil, err
	}

	preferences, err := h.repository.GetAllPreferences(yearMonth)
	if err != nil {
		return nil, err
	}

	affinities, err := h.repository.GetAllAffinities()
	if err != nil {
		return nil, err
	}

	overrides, err := h.repository.GetDateOverrides(yearMonth)
	if err != nil {
		return nil, err
	}

	confirmed, err := h.repository.GetConfirmedSchedulesBefore(yearMonth)
	if err != nil {
		return nil, err
	}

	feeByClinic := make(map[int64]int64, len(clinics))
	for _, clinic := range clinics {
		feeByClinic[clinic.ID] = clinic.Fee
	}

	previousEarnings := make(map[int64]int64)
	for _, s := range confirmed {
		for _, a := range s.Assignments {
			for _, doctorID := range a.DoctorIDs {
				previousEarnings[doctorID] += feeByClinic[a.ClinicID]
			}
		}
	}

	return &optimizer.Input{
		Year:             month.Year(),
		Month:            month.Month(),
		Doctors:          doctors,
		Clinics:          clinics,
		Preferences:      preferences,
		Affinities:       affinities,
		Overrides:        overrides,
		PreviousEarnings: previousEarnings,
	}, nil
}

func (h *Handler) GenerateSchedules(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)

	in, err := h.buildOptimizerInput(yearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	timeLimit := time.Duration(h.config.Solver.TimeLimit) * time.Second
	schedules, failures, err := optimizer.GeneratePlans(in, timeLimit)
	if err != nil {
		// 入力不備（在籍医員なし・対象土曜なしなど）はそのまま伝える
		h.errorResponse(w, r, err.Error())
		return
	}

	// 前回生成した未確定の案は置き換える
	existing, err := h.repository.GetSchedulesByMonth(yearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	for _, s := range existing {
		if s.IsConfirmed {
			continue
		}
		if err := h.repository.DeleteSchedule(s.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	for _, s := range schedules {
		if err := h.repository.CreateSchedule(s); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	// 保持期間を過ぎた月のスケジュールを削除する
	cutoff, err := time.Parse(domain.MonthLayout, yearMonth)
	if err == nil {
		cutoffMonth := cutoff.AddDate(0, -h.config.Solver.MonthsToKeep, 0).Format(domain.MonthLayout)
		if _, err := h.repository.DeleteSchedulesBefore(cutoffMonth); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	failureMessages := make(map[string]string, len(failures))
	for profile, ferr := range failures {
		failureMessages[string(profile)] = ferr.Error()
	}

	h.successResponse(w, r, "スケジュール案を生成しました", map[string]any{
		"schedules": schedules,
		"failures":  failureMessages,
	})
}

// ConfirmSchedule は案を確定し、割り当てのある医員ごとに当番表メールを送る
func (h *Handler) ConfirmSchedule(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if err := h.repository.ConfirmSchedule(s); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "確定に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	doctors, err := h.repository.GetAllDoctors(false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	clinics, err := h.repository.GetAllClinics(false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	clinicNames := make(map[int64]string, len(clinics))
	for _, clinic := range clinics {
		clinicNames[clinic.ID] = clinic.Name
	}

	dutiesByDoctor := make(map[int64][]domain.ConfirmedDuty)
	for _, a := range s.Assignments {
		for _, doctorID := range a.DoctorIDs {
			dutiesByDoctor[doctorID] = append(dutiesByDoctor[doctorID], domain.ConfirmedDuty{
				Date:       a.Date,
				ClinicName: clinicNames[a.ClinicID],
			})
		}
	}

	for _, doctor := range doctors {
		duties, ok := dutiesByDoctor[doctor.ID]
		if !ok {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: "schedule_confirmed",
			To:   doctor.Email,
			Data: domain.ScheduleConfirmedMailData{
				DoctorName: doctor.Name,
				YearMonth:  s.YearMonth,
				Duties:     duties,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "スケジュールを確定しました", s)
}

// UpdateScheduleAssignments は手動調整。整合性を確認してから統計を再計算して保存する
func (h *Handler) UpdateScheduleAssignments(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if s.IsConfirmed {
		h.errorResponse(w, r, "確定済みのスケジュールは編集できません")
		return
	}

	var req struct {
		Assignments []domain.Assignment `json:"assignments" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	in, err := h.buildOptimizerInput(s.YearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	saturdays := optimizer.TargetSaturdays(in.Year, in.Month, in.IsHoliday)
	slots := optimizer.BuildSlots(saturdays, in.Clinics, in.Overrides)

	if err := utils.ValidateAssignmentsWithSlots(req.Assignments, slots); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateAssignmentsWithDoctors(req.Assignments, in.Doctors, in.Preferences, in.Affinities); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	stats := optimizer.Evaluate(in, req.Assignments)

	s.Assignments = req.Assignments
	s.TotalVariance = stats.TotalVariance
	s.SatisfactionScore = stats.SatisfactionScore
	s.IsOptimal = false // 手動調整後は最適性を保証できない

	if err := h.repository.UpdateScheduleAssignments(s); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "割り当てを更新しました", s)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if s.IsConfirmed {
		h.errorResponse(w, r, "確定済みのスケジュールは削除できません")
		return
	}

	if err := h.repository.DeleteSchedule(s.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "スケジュールを削除しました", nil)
}
