package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.repository.GetAllDoctors(false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "医員一覧を取得しました", doctors)
}

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	doctor := &domain.Doctor{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := h.repository.CreateDoctor(doctor); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "doctors_email_key":
				h.badRequest(w, r, errors.New("このメールアドレスは登録済みです"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "医員を登録しました", doctor)
}

func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)
	h.successResponse(w, r, "医員情報を取得しました", doctor)
}

func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		IsActive *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateDoctor(doctor); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "医員情報の更新に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "医員情報を更新しました", doctor)
}

func (h *Handler) UpdateDoctorEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)
	doctor.Email = req.Email

	if err := h.repository.UpdateDoctor(doctor); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "doctors_email_key":
				h.badRequest(w, r, errors.New("このメールアドレスは登録済みです"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "メールアドレスの更新に失敗しました。もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "メールアドレスを更新しました", doctor)
}

// DeactivateDoctor は退職処理。過去の確定スケジュールが参照しているため物理削除はしない
func (h *Handler) DeactivateDoctor(w http.ResponseWriter, r *http.Request) {
	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)

	if err := h.repository.DeactivateDoctor(doctor.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "退職処理が完了しました", nil)
}

func (h *Handler) UpdateDoctorPassword(w http.ResponseWriter, r *http.Request) {
	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	doctor.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateDoctorPassword(doctor); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "パスワードを変更しました", nil)
}
