package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/validate"
	"github.com/pavelanni/attendance/internal/wizard"
)

type attendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"gt=0"`
	Present   *bool  `json:"present" validate:"required"`
	Date      string `json:"date" validate:"isodate"`
}

type activityRequest struct {
	ClassID    int64                 `json:"class_id" validate:"gt=0"`
	Date       string                `json:"date" validate:"isodate"`
	Activities model.ActivityPayload `json:"activities" validate:"required"`
}

// apiRoutes serves the record backend as JSON for external clients.
func (h *Handler) apiRoutes(r chi.Router) {
	r.Get("/classes", h.apiListClasses)
	r.Route("/classes/{classID}", func(r chi.Router) {
		r.Get("/students", h.apiListStudents)
		r.Get("/records/today", h.apiTodayStatus)
		r.Get("/records/recent", h.apiRecentDates)
		r.Get("/attendance", h.apiListAttendance)
		r.Get("/activities", h.apiListActivities)
	})
	r.Post("/attendance", h.apiCreateAttendance)
	r.Post("/activities", h.apiCreateActivity)
}

// apiClass resolves the classID URL parameter the caller may record for.
func (h *Handler) apiClass(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := urlID(r, "classID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid class ID")
		return 0, false
	}
	if _, err := h.canRecord(model.UserFromContext(r.Context()), id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return 0, false
	}
	return id, true
}

// apiDate returns the date query parameter, defaulting to today.
func (h *Handler) apiDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	d := r.URL.Query().Get("date")
	if d == "" {
		return h.config.Today(), true
	}
	date, err := model.ParseDate(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return date, true
}

func (h *Handler) apiListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classesFor(model.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if classes == nil {
		classes = []model.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handler) apiListStudents(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.apiClass(w, r)
	if !ok {
		return
	}
	students, err := h.backend.ListActiveStudents(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *Handler) apiTodayStatus(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.apiClass(w, r)
	if !ok {
		return
	}
	date, ok := h.apiDate(w, r)
	if !ok {
		return
	}
	status, err := h.backend.GetTodayRecordStatus(r.Context(), classID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) apiRecentDates(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.apiClass(w, r)
	if !ok {
		return
	}
	recent, err := h.backend.FindRecentRecordDates(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recent.DatesFound == nil {
		recent.DatesFound = []string{}
	}
	writeJSON(w, http.StatusOK, recent)
}

func (h *Handler) apiListAttendance(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.apiClass(w, r)
	if !ok {
		return
	}
	date, ok := h.apiDate(w, r)
	if !ok {
		return
	}
	records, err := h.backend.ListAttendance(r.Context(), classID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) apiListActivities(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.apiClass(w, r)
	if !ok {
		return
	}
	date, ok := h.apiDate(w, r)
	if !ok {
		return
	}
	payloads, err := h.backend.ListActivities(r.Context(), classID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if payloads == nil {
		payloads = []model.ActivityPayload{}
	}
	writeJSON(w, http.StatusOK, payloads)
}

// decodeJSON reads and validates a request body, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validate.Messages(err, appI18n.Lang(r.Context())),
		})
		return false
	}
	return true
}

func (h *Handler) apiCreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := h.store.GetStudent(r.Context(), req.StudentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "student not found")
		return
	}
	if _, err := h.canRecord(model.UserFromContext(r.Context()), st.ClassID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	rec, err := h.backend.CreateAttendanceRecord(r.Context(), st.ClassID, req.StudentID, *req.Present, req.Date)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) apiCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.canRecord(model.UserFromContext(r.Context()), req.ClassID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	counts := wizard.Reconcile(req.Activities, wizard.DefaultResolvers...)
	payload, err := h.backend.CreateActivityRecord(r.Context(), req.ClassID, req.Date, counts)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}
