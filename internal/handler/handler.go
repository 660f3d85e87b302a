package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
	"github.com/hmatsu88yama/scheduler/internal/config"
	"github.com/hmatsu88yama/scheduler/internal/domain"
	"github.com/hmatsu88yama/scheduler/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	ja := ja.New()
	uni := ut.New(ja, ja)
	trans, _ := uni.GetTranslator("ja")
	if err := ja_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 認証まわり
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/admin/login", h.AdminLogin)
		r.Post("/doctor/login", h.DoctorLogin)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下の API はログイン後のみ呼び出せる
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/doctors", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateDoctor)
			r.Get("/", h.GetAllDoctors) // 医員も名簿は閲覧できる
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.doctorInfo)
				r.Get("/", h.GetDoctor)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateDoctor)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeactivateDoctor)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateDoctorPassword)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/email", h.UpdateDoctorEmail)
			})
		})

		r.Route("/clinics", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateClinic)
			r.Get("/", h.GetAllClinics)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.clinicInfo)
				r.Get("/", h.GetClinic)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateClinic)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeactivateClinic)
			})
		})

		r.Route("/affinities", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllAffinities)
			r.Put("/", h.SetAffinity)
		})

		r.Route("/months/{yearMonth}", func(r chi.Router) {
			r.Use(h.yearMonth)

			r.Route("/overrides", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
				r.Get("/", h.GetDateOverrides)
				r.Put("/", h.SetDateOverride)
			})

			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/preferences", h.GetAllPreferences)

			r.Route("/my-preference", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleDoctor}))
				r.Use(h.myInfo)
				r.Get("/", h.GetMyPreference)
				r.Post("/", h.SubmitMyPreference)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", h.GetSchedulesByMonth) // 医員には確定済みの案だけ見せる
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/generate", h.GenerateSchedules)
			})
		})

		r.Route("/schedules/{id}", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Use(h.schedule)
			r.Patch("/confirm", h.ConfirmSchedule)
			r.Patch("/assignments", h.UpdateScheduleAssignments)
			r.Delete("/", h.DeleteSchedule)
		})
	})
}
