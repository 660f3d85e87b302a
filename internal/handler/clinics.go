package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/hmatsu88yama/scheduler/internal/domain"
)

func (h *Handler) GetAllClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.repository.GetAllClinics(false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "外勤先一覧を取得しました", clinics)
}

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string  `json:"name" validate:"required"`
		Fee                int64   `json:"fee" validate:"min=0"`
		Frequency          string  `json:"frequency" validate:"required,oneof=weekly biweekly_odd biweekly_even first_only last_only"`
		PreferredDoctorIDs []int64 `json:"preferredDoctorIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 指名医員が実在するか確認する
	for _, doctorID := range req.PreferredDoctorIDs {
		if _, err := h.repository.GetDoctorByID(doctorID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "指名医員が存在しません")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	clinic := &domain.Clinic{
		Name:               req.Name,
		Fee:                req.Fee,
		Frequency:          domain.Frequency(req.Frequency),
		PreferredDoctorIDs: req.PreferredDoctorIDs,
		IsActive:           true,
	}

	if err := h.repository.CreateClinic(clinic); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "外勤先を登録しました", clinic)
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinic := r.Context().Value(ClinicInfoCtx).(*domain.Clinic)
	h.successResponse(w, r, "外勤先情報を取得しました", clinic)
}

func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               *string  `json:"name"`
		Fee                *int64   `json:"fee" validate:"omitempty,min=0"`
		Frequency          *string  `json:"frequency" validate:"omitempty,oneof=weekly biweekly_odd biweekly_even first_only last_only"`
		PreferredDoctorIDs *[]int64 `json:"preferredDoctorIDs"`
		IsActive           *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	clinic := r.Context().Value(ClinicInfoCtx).(*domain.Clinic)

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Fee != nil {
		clinic.Fee = *req.Fee
	}
	if req.Frequency != nil {
		clinic.Frequency = domain.Frequency(*req.Frequency)
	}
	if req.PreferredDoctorIDs != nil {
		for _, doctorID := range *req.PreferredDoctorIDs {
			if _, err := h.repository.GetDoctorByID(doctorID); err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, "指名医員が存在しません")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}
		}
		clinic.PreferredDoctorIDs = *req.PreferredDoctorIDs
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateClinic(clinic); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "外勤先情報の更新に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "外勤先情報を更新しました", clinic)
}

// DeactivateClinic は契約終了処理。過去の確定スケジュールが参照しているため物理削除はしない
func (h *Handler) DeactivateClinic(w http.ResponseWriter, r *http.Request) {
	clinic := r.Context().Value(ClinicInfoCtx).(*domain.Clinic)

	if err := h.repository.DeactivateClinic(clinic.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "契約終了処理が完了しました", nil)
}
