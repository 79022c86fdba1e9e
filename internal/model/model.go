package model

import (
	"context"
	"errors"
	"time"
)

// DateLayout is the wire and storage format for record dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not in DateLayout.
var ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

// ErrStudentNotInClass is returned when a mark names a student enrolled in
// a different class than the one being recorded.
var ErrStudentNotInClass = errors.New("student is not in class")

// ParseDate validates a YYYY-MM-DD date string and returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleTeacher can run the recording wizard for assigned classes.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin manages teachers, classes and students and sees reports.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Class is a sabbath school class with an optional assigned teacher.
type Class struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TeacherID *int64    `json:"teacher_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Student belongs to exactly one class. Inactive students are hidden from
// the roster walker but kept for historical reports.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ClassID   int64     `json:"class_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord is the durable present/absent mark for one student on one date.
type AttendanceRecord struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	ClassID    int64     `json:"class_id"`
	Present    bool      `json:"present"`
	Date       string    `json:"date"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ActivityRecord holds the activity counts of a class for one date.
type ActivityRecord struct {
	ID         int64          `json:"id"`
	ClassID    int64          `json:"class_id"`
	Date       string         `json:"date"`
	Counts     ActivityCounts `json:"counts"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Payload flattens the record into the loosely typed shape served to clients.
// Activity fields always use canonical keys.
func (r ActivityRecord) Payload() ActivityPayload {
	p := ActivityPayload{
		"id":          r.ID,
		"class_id":    r.ClassID,
		"date":        r.Date,
		"recorded_at": r.RecordedAt,
	}
	for kind, v := range r.Counts.Complete() {
		p[string(kind)] = v
	}
	return p
}

// TodayStatus reports which records already exist for a class on a date.
type TodayStatus struct {
	HasRecords        bool               `json:"has_records"`
	AttendanceRecords []AttendanceRecord `json:"attendance_records"`
	ActivityRecord    ActivityPayload    `json:"activity_record"`
}

// RecentDates lists the dates with records for a class within the lookback window.
type RecentDates struct {
	HasRecords bool     `json:"has_records"`
	DatesFound []string `json:"dates_found"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	BasePath      string         // URL prefix for sub-path deployments
	SecureCookies bool           // Set Secure flag on cookies (disable for local dev)
	Location      *time.Location // Time zone that decides the wizard date
	RecentDays    int            // Lookback window for recent record detection
}

// Now returns the current time in the configured location.
func (c AppConfig) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Today returns the current date in the configured location.
func (c AppConfig) Today() string {
	return c.Now().Format(DateLayout)
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type sessionCtxKey struct{}

// ContextWithSessionID stores the auth session token in context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, id)
}

// SessionIDFromContext retrieves the auth session token from context.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey{}).(string)
	return id
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// RosterImport is used for loading classes and students from JSON.
type RosterImport struct {
	Class    string   `json:"class" validate:"required,max=100"`
	Teacher  string   `json:"teacher,omitempty" validate:"omitempty,max=100"`
	Students []string `json:"students" validate:"dive,max=100"`
}
