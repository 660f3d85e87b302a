package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (h *Handler) GetDateOverrides(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)

	overrides, err := h.repository.GetDateOverrides(yearMonth)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "日付別設定を取得しました", overrides)
}

// SetDateOverride は外勤先×日付の必要医員数を設定する
// 0 = 休診、2 = 2人体制。1（通常）は行の削除と同義
func (h *Handler) SetDateOverride(w http.ResponseWriter, r *http.Request) {
	yearMonth := r.Context().Value(YearMonthCtx).(string)

	var req struct {
		ClinicID        int64  `json:"clinicID" validate:"required"`
		Date            string `json:"date" validate:"required"`
		RequiredDoctors int32  `json:"requiredDoctors" validate:"min=0,max=2"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	day, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		h.errorResponse(w, r, "日付の形式が不正です（YYYY-MM-DD）")
		return
	}
	if !strings.HasPrefix(req.Date, yearMonth) {
		h.errorResponse(w, r, "対象月外の日付です")
		return
	}
	if day.Weekday() != time.Saturday {
		h.errorResponse(w, r, "土曜日以外は設定できません")
		return
	}

	if _, err := h.repository.GetClinicByID(req.ClinicID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "外勤先が存在しません")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	override := &domain.DateOverride{
		ClinicID:        req.ClinicID,
		Date:            req.Date,
		RequiredDoctors: req.RequiredDoctors,
	}

	if err := h.repository.SetDateOverride(override); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "日付別設定を保存しました", override)
}
