package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pavelanni/attendance/internal/handler/views"
	"github.com/pavelanni/attendance/internal/llm"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/store"
	"github.com/pavelanni/attendance/internal/wizard"
)

// Summarizer writes a narrative for a report. *llm.Client implements it.
type Summarizer interface {
	Summarize(ctx context.Context, rep model.Report, lang string) (*llm.Summary, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	backend    wizard.Backend
	wizards    *wizard.Registry
	summarizer Summarizer
	config     model.AppConfig
}

// New creates a new Handler. summarizer may be nil.
func New(s *store.Store, wizards *wizard.Registry, summarizer Summarizer, cfg model.AppConfig) *Handler {
	return &Handler{
		store:      s,
		backend:    store.NewWizardBackend(s, cfg.RecentDays, cfg.Now),
		wizards:    wizards,
		summarizer: summarizer,
		config:     cfg,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.basePathMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(middleware.AllowContentType("application/json"))
		h.apiRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/", h.handleDashboard)
			h.wizardRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/admin/users", h.handleAdminUsersPage)
				r.Post("/admin/users", h.handleCreateUser)
				r.Post("/admin/users/{userID}/toggle", h.handleToggleUserActive)
				r.Post("/admin/users/{userID}/password", h.handleResetPassword)
				r.Get("/admin/classes", h.handleAdminClassesPage)
				r.Post("/admin/classes", h.handleCreateClass)
				r.Post("/admin/classes/{classID}/toggle", h.handleToggleClassActive)
				r.Post("/admin/classes/{classID}/teacher", h.handleAssignTeacher)
				r.Get("/admin/classes/{classID}/students", h.handleClassStudentsPage)
				r.Post("/admin/classes/{classID}/students", h.handleCreateStudent)
				r.Post("/admin/students/{studentID}/toggle", h.handleToggleStudentActive)
				r.Post("/admin/roster", h.handleUploadRoster)
				r.Get("/reports", h.handleReportsPage)
				r.Get("/reports/xlsx", h.handleReportXLSX)
				r.Post("/reports/summary", h.handleReportSummary)
			})
		})
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func (h *Handler) basePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classesFor(model.UserFromContext(r.Context()))
	if err != nil {
		slog.Error("failed to list classes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, views.DashboardPage(classes, h.config.Today()))
}

// classesFor returns the classes a user may record for. Admins see every
// active class.
func (h *Handler) classesFor(user *model.User) ([]model.Class, error) {
	if user == nil {
		return nil, nil
	}
	if user.Role != model.UserRoleAdmin {
		return h.store.ListClassesForTeacher(user.ID)
	}
	all, err := h.store.ListClasses()
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

// canRecord reports whether user may record for classID and returns the class.
func (h *Handler) canRecord(user *model.User, classID int64) (*model.Class, error) {
	class, err := h.store.GetClass(classID)
	if err != nil {
		return nil, err
	}
	if class == nil || !class.Active {
		return nil, store.ErrNotFound
	}
	if user.Role == model.UserRoleAdmin {
		return class, nil
	}
	if class.TeacherID == nil || *class.TeacherID != user.ID {
		return nil, errForbidden
	}
	return class, nil
}

var errForbidden = errors.New("forbidden")

// SweepExpiredSessions deletes auth sessions that expired before now and
// drops their wizards. It returns how many were removed.
func (h *Handler) SweepExpiredSessions(now time.Time) (int, error) {
	tokens, err := h.store.CleanupExpiredSessions(now)
	if err != nil {
		return 0, err
	}
	for _, t := range tokens {
		h.wizards.Drop(t)
	}
	return len(tokens), nil
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, wizard.ErrNoClass), errors.Is(err, wizard.ErrUnknownActivity),
		errors.Is(err, model.ErrStudentNotInClass),
		errors.Is(err, wizard.ErrNotComplete), errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidTrimester):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
