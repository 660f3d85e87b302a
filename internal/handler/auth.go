package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordKey は settings テーブル上の管理者パスワードハッシュのキー
const AdminPasswordKey = "admin_password_hash"

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, role domain.Role, subject string) error {
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   subject,
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return err
	}

	// http-only cookie で返す
	cookie := &http.Cookie{
		Name:     "__gaikin_scheduler_token",
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
	return nil
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hash, err := h.repository.GetSetting(AdminPasswordKey)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "パスワードが違います")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 管理者は医員レコードを持たないので subject は 0 とする
	if err := h.setAuthCookie(w, domain.RoleAdmin, "0"); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "ログインしました", nil)
}

func (h *Handler) DoctorLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	doctor, err := h.repository.GetDoctorByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "メールアドレスまたはパスワードが違います")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !doctor.IsActive {
		h.errorResponse(w, r, "退職済みのアカウントです")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doctor.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "メールアドレスまたはパスワードが違います")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.setAuthCookie(w, domain.RoleDoctor, strconv.FormatInt(doctor.ID, 10)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "ログインしました", doctor)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    "__gaikin_scheduler_token",
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "ログアウトしました", nil)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
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

	doctor, err := h.repository.GetDoctorByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// アカウントの有無を外部から探られないよう、存在しない場合も送信済みと返す
			h.successResponse(w, r, "パスワード再設定用の確認コードをメールで送信しました", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// OTP を生成して redis に保存する
	otp := utils.GenerateRandomOTP()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if err := h.redisClient.Set(ctx, fmt.Sprintf("otp_%d_reset_password", doctor.ID), otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// メールを組み立てる
	mailMessage := domain.MailMessage{
		Type: "reset_password",
		To:   doctor.Email,
		Data: domain.ResetPasswordMailData{
			DoctorName: doctor.Name,
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // メール本文では分単位で表示する
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// メッセージキューに積む
	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "パスワード再設定用の確認コードをメールで送信しました", nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required"`
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

	doctor, err := h.repository.GetDoctorByEmail(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "確認コードが違います")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// OTP を検証する
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, fmt.Sprintf("otp_%d_reset_password", doctor.ID)).Result()
	if err != nil {
		h.errorResponse(w, r, "確認コードが違います")
		return
	}

	if otp != req.OTP {
		h.errorResponse(w, r, "確認コードが違います")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	doctor.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateDoctorPassword(doctor); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "もう一度お試しください")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 使用済みの OTP を消す
	if err := h.redisClient.Del(ctx, fmt.Sprintf("otp_%d_reset_password", doctor.ID)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "パスワードを再設定しました", nil)
}
