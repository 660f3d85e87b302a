package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (h *Handler) GetAllAffinities(w http.ResponseWriter, r *http.Request) {
	affinities, err := h.repository.GetAllAffinities()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "相性一覧を取得しました", affinities)
}

// SetAffinity は (医員, 外勤先) の相性を設定する。○（通常）は行の削除と同義
func (h *Handler) SetAffinity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DoctorID int64  `json:"doctorID" validate:"required"`
		ClinicID int64  `json:"clinicID" validate:"required"`
		Level    string `json:"level" validate:"required,oneof=forbidden neutral mandatory"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetDoctorByID(req.DoctorID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "医員が存在しません")
		default:
			h.internalServerError(w, r, err)
		}
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

	affinity := &domain.Affinity{
		DoctorID: req.DoctorID,
		ClinicID: req.ClinicID,
		Level:    domain.AffinityLevel(req.Level),
	}

	if err := h.repository.SetAffinity(affinity); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "相性を設定しました", affinity)
}
