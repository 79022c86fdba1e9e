package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/attendance/internal/handler/views"
	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/roster"
	"github.com/pavelanni/attendance/internal/validate"
)

type userForm struct {
	Username    string `form:"username" validate:"notblank,max=50"`
	DisplayName string `form:"display_name" validate:"max=100"`
	Password    string `form:"password" validate:"min=8,max=72"`
	Role        string `form:"role" validate:"user_role"`
}

type nameForm struct {
	Name string `form:"name" validate:"notblank,max=100"`
}

type passwordForm struct {
	Password string `form:"password" validate:"min=8,max=72"`
}

func (h *Handler) handleAdminUsersPage(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, http.StatusOK, "")
}

func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, status int, msg string) {
	users, err := h.store.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.AdminUsersPage(users, msg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) invalidInput(r *http.Request, err error) string {
	return appI18n.Td(r.Context(), "InvalidInput", map[string]any{
		"Detail": validate.Summary(err, appI18n.Lang(r.Context())),
	})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	f := userForm{
		Username:    strings.TrimSpace(r.FormValue("username")),
		DisplayName: strings.TrimSpace(r.FormValue("display_name")),
		Password:    r.FormValue("password"),
		Role:        r.FormValue("role"),
	}
	if f.Role == "" {
		f.Role = string(model.UserRoleTeacher)
	}
	if err := validate.Struct(f); err != nil {
		h.renderUsers(w, r, http.StatusBadRequest, h.invalidInput(r, err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if f.DisplayName == "" {
		f.DisplayName = f.Username
	}

	_, err = h.store.CreateUser(model.User{
		Username:     f.Username,
		DisplayName:  f.DisplayName,
		PasswordHash: string(hash),
		Role:         model.UserRole(f.Role),
		Active:       true,
	})
	if err != nil {
		h.renderUsers(w, r, http.StatusConflict, "failed to create user: "+err.Error())
		return
	}

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "userID")
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}
	if me := model.UserFromContext(r.Context()); me != nil && me.ID == id {
		http.Error(w, "cannot deactivate yourself", http.StatusBadRequest)
		return
	}

	if err := h.store.ToggleUserActive(id); err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.dropUserSessions(id)

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "userID")
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}
	f := passwordForm{Password: r.FormValue("password")}
	if err := validate.Struct(f); err != nil {
		h.renderUsers(w, r, http.StatusBadRequest, h.invalidInput(r, err))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.store.UpdatePassword(id, string(hash)); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.dropUserSessions(id)
	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

// dropUserSessions logs a user out everywhere and discards their wizards.
func (h *Handler) dropUserSessions(userID int64) {
	tokens, err := h.store.DeleteUserAuthSessions(userID)
	if err != nil {
		slog.Error("failed to drop user sessions", "user_id", userID, "error", err)
		return
	}
	for _, t := range tokens {
		h.wizards.Drop(t)
	}
}

func (h *Handler) handleAdminClassesPage(w http.ResponseWriter, r *http.Request) {
	h.renderClasses(w, r, http.StatusOK, "")
}

func (h *Handler) renderClasses(w http.ResponseWriter, r *http.Request, status int, msg string) {
	classes, err := h.store.ListClasses()
	if err != nil {
		slog.Error("failed to list classes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	teachers, err := h.store.ListTeachers()
	if err != nil {
		slog.Error("failed to list teachers", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.AdminClassesPage(classes, teachers, msg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	f := nameForm{Name: strings.TrimSpace(r.FormValue("name"))}
	if err := validate.Struct(f); err != nil {
		h.renderClasses(w, r, http.StatusBadRequest, h.invalidInput(r, err))
		return
	}
	if _, err := h.store.CreateClass(model.Class{Name: f.Name, Active: true}); err != nil {
		h.renderClasses(w, r, http.StatusConflict, "failed to create class: "+err.Error())
		return
	}
	http.Redirect(w, r, h.path("/admin/classes"), http.StatusSeeOther)
}

func (h *Handler) handleToggleClassActive(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "classID")
	if err != nil {
		http.Error(w, "invalid class ID", http.StatusBadRequest)
		return
	}
	if err := h.store.ToggleClassActive(id); err != nil {
		slog.Error("failed to toggle class active", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path("/admin/classes"), http.StatusSeeOther)
}

func (h *Handler) handleAssignTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "classID")
	if err != nil {
		http.Error(w, "invalid class ID", http.StatusBadRequest)
		return
	}
	teacherID, err := strconv.ParseInt(r.FormValue("teacher_id"), 10, 64)
	if err != nil || teacherID < 0 {
		http.Error(w, "invalid teacher ID", http.StatusBadRequest)
		return
	}
	var tid *int64
	if teacherID > 0 {
		teacher, err := h.store.GetUserByID(teacherID)
		if err != nil || teacher == nil || teacher.Role != model.UserRoleTeacher {
			http.Error(w, "unknown teacher", http.StatusBadRequest)
			return
		}
		tid = &teacherID
	}
	if err := h.store.AssignTeacher(id, tid); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, h.path("/admin/classes"), http.StatusSeeOther)
}

func (h *Handler) handleClassStudentsPage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "classID")
	if err != nil {
		http.Error(w, "invalid class ID", http.StatusBadRequest)
		return
	}
	h.renderStudents(w, r, id, http.StatusOK, "")
}

func (h *Handler) renderStudents(w http.ResponseWriter, r *http.Request, classID int64, status int, msg string) {
	class, err := h.store.GetClass(classID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if class == nil {
		http.Error(w, "class not found", http.StatusNotFound)
		return
	}
	students, err := h.store.ListStudents(r.Context(), classID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ClassStudentsPage(*class, students, msg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	classID, err := urlID(r, "classID")
	if err != nil {
		http.Error(w, "invalid class ID", http.StatusBadRequest)
		return
	}
	f := nameForm{Name: strings.TrimSpace(r.FormValue("name"))}
	if err := validate.Struct(f); err != nil {
		h.renderStudents(w, r, classID, http.StatusBadRequest, h.invalidInput(r, err))
		return
	}
	if _, err := h.store.CreateStudent(model.Student{Name: f.Name, ClassID: classID, Active: true}); err != nil {
		h.renderStudents(w, r, classID, http.StatusBadRequest, "failed to add student: "+err.Error())
		return
	}
	http.Redirect(w, r, h.path(fmt.Sprintf("/admin/classes/%d/students", classID)), http.StatusSeeOther)
}

func (h *Handler) handleToggleStudentActive(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "studentID")
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}
	st, err := h.store.GetStudent(r.Context(), id)
	if err != nil || st == nil {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	if err := h.store.ToggleStudentActive(id); err != nil {
		slog.Error("failed to toggle student active", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.path(fmt.Sprintf("/admin/classes/%d/students", st.ClassID)), http.StatusSeeOther)
}

func (h *Handler) handleUploadRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("roster_file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	hash := roster.Hash(data)
	storedHash, err := h.store.GetImportedFileHash(header.Filename)
	if err != nil {
		slog.Error("failed to check import status", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if storedHash == hash {
		h.renderClasses(w, r, http.StatusOK, appI18n.T(r.Context(), "RosterUnchanged"))
		return
	}

	entries, err := roster.Parse(header.Filename, data)
	if err != nil {
		h.renderClasses(w, r, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.store.ImportRoster(r.Context(), entries)
	if err != nil {
		h.renderClasses(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SetImportedFileHash(header.Filename, hash); err != nil {
		slog.Error("failed to record import", "error", err)
	}

	slog.Info("uploaded roster via admin", "filename", header.Filename,
		"classes", stats.ClassesCreated, "students", stats.StudentsCreated)

	h.renderClasses(w, r, http.StatusOK, appI18n.Td(r.Context(), "RosterImported", map[string]any{
		"Classes":  stats.ClassesCreated,
		"Students": stats.StudentsCreated,
	}))
}
