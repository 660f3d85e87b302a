package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (h *Handler) GetAllPreferences(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)

	preferences, err := h.repository.GetAllPreferences(yearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "希望一覧を取得しました", preferences)
}

func (h *Handler) GetMyPreference(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Doctor)

	preference, err := h.repository.GetPreference(myInfo.ID, yearMonth)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 未提出はエラーではない
			h.successResponse(w, r, "希望は未提出です", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "希望を取得しました", preference)
}

func (h *Handler) validateDates(dates []string, yearMonth string) error {
	for _, date := range dates {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return errors.New("日付の形式が不正です（YYYY-MM-DD）")
		}
		if !strings.HasPrefix(date, yearMonth) {
			return errors.New("対象月外の日付が含まれています")
		}
	}
	return nil
}

// SubmitMyPreference は月次希望の提出。同じ月への再提出は上書きになる
func (h *Handler) SubmitMyPreference(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Doctor)

	var req struct {
		NGDates            []string `json:"ngDates"`
		AvoidDates         []string `json:"avoidDates"`
		PreferredClinicIDs []int64  `json:"preferredClinicIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.validateDates(req.NGDates, yearMonth); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := h.validateDates(req.AvoidDates, yearMonth); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	for _, clinicID := range req.PreferredClinicIDs {
		if _, err := h.repository.GetClinicByID(clinicID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "存在しない外勤先が含まれています")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	preference := &domain.Preference{
		DoctorID:           myInfo.ID,
		YearMonth:          yearMonth,
		NGDates:            req.NGDates,
		AvoidDates:         req.AvoidDates,
		PreferredClinicIDs: req.PreferredClinicIDs,
	}

	if err := h.repository.UpsertPreference(preference); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "希望を提出しました", preference)
}
