package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/attendance/internal/handler/views"
	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/validate"
	"github.com/pavelanni/attendance/internal/wizard"
)

type classForm struct {
	ClassID int64 `form:"class_id" validate:"gt=0"`
}

type markForm struct {
	StudentID int64  `form:"student_id" validate:"gt=0"`
	Present   string `form:"present" validate:"oneof=true false"`
}

type activityForm struct {
	Kind  string `form:"kind" validate:"activity_kind"`
	Value string `form:"value" validate:"omitempty,numeric"`
}

type keyForm struct {
	Key string `form:"key" validate:"required,max=10"`
}

// formError wraps input that failed validation.
type formError struct{ err error }

func (e formError) Error() string { return "invalid form: " + e.err.Error() }
func (e formError) Unwrap() error { return e.err }

func (h *Handler) wizardRoutes(r chi.Router) {
	r.Get("/wizard", h.handleWizardPage)
	r.Get("/wizard/state", h.handleWizardState)
	r.Post("/wizard/class", h.handleWizardClass)
	r.Post("/wizard/mark", h.handleWizardMark)
	r.Post("/wizard/student/previous", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.PreviousStudent()
		return nil
	}))
	r.Post("/wizard/activity", h.handleWizardActivity)
	r.Post("/wizard/activity/next", h.wizardAction(func(ctx context.Context, s *wizard.Session, _ *http.Request) error {
		if err := h.recheckClass(ctx, s); err != nil {
			return err
		}
		s.NextActivity(ctx)
		return nil
	}))
	r.Post("/wizard/activity/previous", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.PreviousActivity()
		return nil
	}))
	r.Post("/wizard/step/next", h.wizardAction(func(ctx context.Context, s *wizard.Session, _ *http.Request) error {
		if s.ClassID() == 0 {
			return wizard.ErrNoClass
		}
		if err := h.recheckClass(ctx, s); err != nil {
			return err
		}
		s.NextStep(ctx)
		return nil
	}))
	r.Post("/wizard/step/previous", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.PreviousStep()
		return nil
	}))
	r.Post("/wizard/resubmit", h.wizardAction(func(ctx context.Context, s *wizard.Session, _ *http.Request) error {
		if err := h.recheckClass(ctx, s); err != nil {
			return err
		}
		return s.Resubmit(ctx)
	}))
	r.Post("/wizard/reset", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.Reset()
		return nil
	}))
	r.Post("/wizard/notice/dismiss", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.DismissNotice()
		return nil
	}))
	r.Post("/wizard/calculator/open", h.wizardAction(func(_ context.Context, s *wizard.Session, r *http.Request) error {
		return s.OpenCalculator(model.ActivityKind(r.FormValue("kind")))
	}))
	r.Post("/wizard/calculator/key", h.wizardAction(func(_ context.Context, s *wizard.Session, r *http.Request) error {
		f := keyForm{Key: r.FormValue("key")}
		if err := validate.Struct(f); err != nil {
			return formError{err}
		}
		s.CalculatorKey(f.Key)
		return nil
	}))
	r.Post("/wizard/calculator/confirm", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.ConfirmCalculator()
		return nil
	}))
	r.Post("/wizard/calculator/close", h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		s.CloseCalculator()
		return nil
	}))
}

// recheckClass confirms the user may still record for the session's class.
// Actions that can submit call it; assignments may change after selection.
func (h *Handler) recheckClass(ctx context.Context, s *wizard.Session) error {
	if s.ClassID() == 0 {
		return nil
	}
	_, err := h.canRecord(model.UserFromContext(ctx), s.ClassID())
	return err
}

// wizardAction runs fn on the caller's wizard session and answers with the
// resulting view as JSON, or redirects back to the wizard page for forms.
func (h *Handler) wizardAction(fn func(ctx context.Context, s *wizard.Session, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view wizard.View
		key := model.SessionIDFromContext(r.Context())
		err := h.wizards.With(key, func(s *wizard.Session) error {
			if err := fn(r.Context(), s, r); err != nil {
				return err
			}
			view = s.View()
			return nil
		})
		if err != nil {
			h.wizardError(w, r, err)
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, view)
			return
		}
		http.Redirect(w, r, h.path("/wizard"), http.StatusSeeOther)
	}
}

func (h *Handler) wizardError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	var fe formError
	if errors.As(err, &fe) {
		status = http.StatusBadRequest
		msg = validate.Summary(fe.err, appI18n.Lang(r.Context()))
	}
	if status == http.StatusInternalServerError {
		slog.Error("wizard action failed", "path", r.URL.Path, "error", err)
	}
	if wantsJSON(r) {
		writeError(w, status, msg)
		return
	}
	http.Error(w, msg, status)
}

func (h *Handler) handleWizardPage(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	classes, err := h.classesFor(user)
	if err != nil {
		slog.Error("failed to list classes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var view wizard.View
	_ = h.wizards.With(model.SessionIDFromContext(r.Context()), func(s *wizard.Session) error {
		view = s.View()
		return nil
	})
	render(w, r, views.WizardPage(view, classes))
}

func (h *Handler) handleWizardState(w http.ResponseWriter, r *http.Request) {
	var view wizard.View
	_ = h.wizards.With(model.SessionIDFromContext(r.Context()), func(s *wizard.Session) error {
		view = s.View()
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleWizardClass(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.FormValue("class_id"), 10, 64)
	f := classForm{ClassID: id}
	if err := validate.Struct(f); err != nil {
		h.wizardError(w, r, formError{err})
		return
	}
	class, err := h.canRecord(model.UserFromContext(r.Context()), f.ClassID)
	if err != nil {
		h.wizardError(w, r, err)
		return
	}
	h.wizardAction(func(ctx context.Context, s *wizard.Session, _ *http.Request) error {
		return s.SelectClass(ctx, class.ID, class.Name)
	})(w, r)
}

func (h *Handler) handleWizardMark(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.FormValue("student_id"), 10, 64)
	f := markForm{StudentID: id, Present: r.FormValue("present")}
	if err := validate.Struct(f); err != nil {
		h.wizardError(w, r, formError{err})
		return
	}
	h.wizardAction(func(ctx context.Context, s *wizard.Session, _ *http.Request) error {
		if s.ClassID() == 0 {
			return wizard.ErrNoClass
		}
		s.MarkAttendance(ctx, f.StudentID, f.Present == "true")
		return nil
	})(w, r)
}

func (h *Handler) handleWizardActivity(w http.ResponseWriter, r *http.Request) {
	f := activityForm{Kind: r.FormValue("kind"), Value: r.FormValue("value")}
	if err := validate.Struct(f); err != nil {
		h.wizardError(w, r, formError{err})
		return
	}
	v, _ := strconv.Atoi(f.Value)
	h.wizardAction(func(_ context.Context, s *wizard.Session, _ *http.Request) error {
		return s.SetActivity(model.ActivityKind(f.Kind), v)
	})(w, r)
}
