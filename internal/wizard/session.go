// Package wizard implements the attendance and activity recording flow a
// teacher walks through for one class on one date.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/pavelanni/attendance/internal/model"
)

var (
	// ErrNoClass is returned by operations that need a selected class.
	ErrNoClass = errors.New("no class selected")
	// ErrUnknownActivity is returned for activity keys outside the known set.
	ErrUnknownActivity = errors.New("unknown activity")
	// ErrNotComplete is returned when resubmitting before the completion step.
	ErrNotComplete = errors.New("wizard is not at the completion step")
)

// Step is a wizard stage.
type Step int

const (
	StepAttendance Step = 1
	StepActivities Step = 2
	StepCompletion Step = 3
)

func (s Step) String() string {
	switch s {
	case StepAttendance:
		return "attendance"
	case StepActivities:
		return "activities"
	case StepCompletion:
		return "completion"
	}
	return "unknown"
}

// Notice is a dismissible notification for the teacher. MessageID is an
// i18n message id.
type Notice struct {
	Level     string `json:"level"`
	MessageID string `json:"message_id"`
	Detail    string `json:"detail,omitempty"`
}

const (
	noticeSaved      = "NoticeSaved"
	noticeSaveFailed = "NoticeSaveFailed"
)

// Session is one teacher's in-progress wizard. It is not safe for
// concurrent use; the Registry serializes access.
type Session struct {
	backend Backend
	sync    *Synchronizer
	log     *slog.Logger
	date    string

	classID   int64
	className string
	step      Step
	roster    *Roster
	counts    model.ActivityCounts
	activity  int
	editing   bool
	calc      Calculator
	notice    *Notice
	last      *SubmitResult
}

// NewSession creates a wizard fixed to date.
func NewSession(backend Backend, date string, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		backend: backend,
		sync:    NewSynchronizer(backend, log),
		log:     log,
		date:    date,
	}
	s.Reset()
	return s
}

// Date returns the date the session records for.
func (s *Session) Date() string { return s.date }

// Step returns the current stage.
func (s *Session) Step() Step { return s.step }

// ClassID returns the selected class, or 0.
func (s *Session) ClassID() int64 { return s.classID }

// Editing reports whether existing records were loaded for the date.
func (s *Session) Editing() bool { return s.editing }

// Roster returns the roster walker.
func (s *Session) Roster() *Roster { return s.roster }

// Counts returns the live activity counts.
func (s *Session) Counts() model.ActivityCounts { return s.counts }

// Calculator returns the embedded calculator.
func (s *Session) Calculator() *Calculator { return &s.calc }

// Reset returns to the attendance step with empty marks and counts. The
// selected class and its roster snapshot are kept.
func (s *Session) Reset() {
	var students []model.Student
	if s.roster != nil {
		students = s.roster.Students()
	}
	s.step = StepAttendance
	s.roster = NewRoster(students)
	s.counts = make(model.ActivityCounts)
	s.activity = 0
	s.editing = false
	s.calc.Close()
	s.notice = nil
	s.last = nil
}

// SelectClass resets the session, then loads the class roster and any
// records already saved for the session date. Load failures are logged
// and leave the session blank.
func (s *Session) SelectClass(ctx context.Context, classID int64, name string) error {
	if classID <= 0 {
		return ErrNoClass
	}
	s.roster = nil
	s.Reset()
	s.classID = classID
	s.className = name

	students, err := s.backend.ListActiveStudents(ctx, classID)
	if err != nil {
		s.log.Warn("failed to load roster", "class_id", classID, "error", err)
		students = nil
	}
	s.roster = NewRoster(students)
	s.loadExisting(ctx)
	return nil
}

func (s *Session) loadExisting(ctx context.Context) {
	status, err := s.backend.GetTodayRecordStatus(ctx, s.classID, s.date)
	if err != nil {
		s.log.Warn("failed to load today's records", "class_id", s.classID, "date", s.date, "error", err)
	}
	if err == nil && status.HasRecords {
		s.apply(status.AttendanceRecords, status.ActivityRecord)
		return
	}

	recent, err := s.backend.FindRecentRecordDates(ctx, s.classID)
	if err != nil {
		s.log.Warn("failed to look up recent records", "class_id", s.classID, "error", err)
		return
	}
	if !recent.HasRecords || !slices.Contains(recent.DatesFound, s.date) {
		return
	}

	attendance, err := s.backend.ListAttendance(ctx, s.classID, s.date)
	if err != nil {
		s.log.Warn("failed to load attendance", "class_id", s.classID, "date", s.date, "error", err)
	}
	activities, err := s.backend.ListActivities(ctx, s.classID, s.date)
	if err != nil {
		s.log.Warn("failed to load activities", "class_id", s.classID, "date", s.date, "error", err)
	}
	var activity model.ActivityPayload
	if len(activities) > 0 {
		activity = activities[0]
	}
	s.apply(attendance, activity)
}

// apply pre-fills marks in roster order, then any leftover records.
func (s *Session) apply(records []model.AttendanceRecord, activity model.ActivityPayload) {
	if len(records) == 0 && activity == nil {
		return
	}
	byStudent := make(map[int64]bool, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r.Present
	}
	marks := s.roster.Marks()
	for _, st := range s.roster.Students() {
		if present, ok := byStudent[st.ID]; ok {
			marks.Set(st.ID, present)
			delete(byStudent, st.ID)
		}
	}
	for _, r := range records {
		if present, ok := byStudent[r.StudentID]; ok {
			marks.Set(r.StudentID, present)
			delete(byStudent, r.StudentID)
		}
	}
	if activity != nil {
		s.counts = Reconcile(activity)
	}
	s.editing = true
	s.log.Info("loaded existing records", "class_id", s.classID, "date", s.date, "attendance", marks.Len())
}

// MarkAttendance records a mark for studentID and advances the roster.
// Marking the last student moves the wizard to the activities step.
func (s *Session) MarkAttendance(ctx context.Context, studentID int64, present bool) {
	done := s.roster.Mark(studentID, present)
	if done && s.step == StepAttendance {
		s.goTo(ctx, StepActivities)
	}
}

// PreviousStudent moves the roster back one student.
func (s *Session) PreviousStudent() {
	s.roster.Previous()
}

// CurrentActivity returns the activity under the cursor.
func (s *Session) CurrentActivity() model.ActivityKind {
	return model.ActivityKinds[s.activity]
}

// SetActivity commits a value for kind.
func (s *Session) SetActivity(kind model.ActivityKind, v int) error {
	if !kind.IsValid() {
		return ErrUnknownActivity
	}
	s.counts.Set(kind, v)
	return nil
}

// NextActivity moves to the next activity, or to completion from the last one.
func (s *Session) NextActivity(ctx context.Context) {
	if s.activity < len(model.ActivityKinds)-1 {
		s.activity++
		return
	}
	if s.step == StepActivities {
		s.goTo(ctx, StepCompletion)
	}
}

// PreviousActivity moves the activity cursor back one.
func (s *Session) PreviousActivity() {
	if s.activity > 0 {
		s.activity--
	}
}

// NextStep advances one step, stopping at completion.
func (s *Session) NextStep(ctx context.Context) {
	if s.step < StepCompletion {
		s.goTo(ctx, s.step+1)
	}
}

// PreviousStep goes back one step, stopping at attendance.
func (s *Session) PreviousStep() {
	if s.step > StepAttendance {
		s.step--
	}
}

func (s *Session) goTo(ctx context.Context, step Step) {
	if step == s.step {
		return
	}
	s.step = step
	if step == StepCompletion {
		s.submit(ctx)
	}
}

// Resubmit retries the submission from the completion step.
func (s *Session) Resubmit(ctx context.Context) error {
	if s.step != StepCompletion {
		return ErrNotComplete
	}
	s.submit(ctx)
	return nil
}

func (s *Session) submit(ctx context.Context) {
	if s.classID == 0 {
		s.notice = &Notice{Level: "error", MessageID: noticeSaveFailed, Detail: ErrNoClass.Error()}
		return
	}
	res, err := s.sync.Submit(ctx, Submission{
		ClassID: s.classID,
		Date:    s.date,
		Marks:   s.roster.Marks(),
		Counts:  s.counts,
	})
	if err != nil {
		s.notice = &Notice{Level: "error", MessageID: noticeSaveFailed, Detail: err.Error()}
		return
	}
	for kind, v := range res.Counts {
		s.counts.Set(kind, v)
	}
	s.last = &res
	s.notice = &Notice{Level: "success", MessageID: noticeSaved}
}

// DismissNotice clears the current notification.
func (s *Session) DismissNotice() {
	s.notice = nil
}

// OpenCalculator opens the calculator on kind, seeded with its current value.
func (s *Session) OpenCalculator(kind model.ActivityKind) error {
	if !kind.IsValid() {
		return ErrUnknownActivity
	}
	s.calc.Start(kind, s.counts.Get(kind))
	return nil
}

// CalculatorKey feeds a keypad button or keyboard key to the calculator.
// Escape closes it without committing.
func (s *Session) CalculatorKey(key string) {
	if !s.calc.Open {
		return
	}
	if s.calc.Key(key) == KeyClose {
		s.calc.Close()
	}
}

// ConfirmCalculator commits the calculator's value to its target activity.
func (s *Session) ConfirmCalculator() {
	if !s.calc.Open {
		return
	}
	s.counts.Set(s.calc.Target, s.calc.Resolve())
	s.calc.Close()
}

// CloseCalculator discards the calculator state.
func (s *Session) CloseCalculator() {
	s.calc.Close()
}

// View is the read-only state the hosting UI renders.
type View struct {
	Date            string               `json:"date"`
	ClassID         int64                `json:"class_id"`
	ClassName       string               `json:"class_name"`
	Step            Step                 `json:"step"`
	StepName        string               `json:"step_name"`
	Students        []model.Student      `json:"students"`
	RosterCursor    int                  `json:"roster_cursor"`
	CurrentStudent  *model.Student       `json:"current_student,omitempty"`
	NoStudents      bool                 `json:"no_students"`
	Attendance      map[int64]bool       `json:"attendance"`
	ActivityCursor  int                  `json:"activity_cursor"`
	CurrentActivity model.ActivityKind   `json:"current_activity"`
	Activities      model.ActivityCounts `json:"activities"`
	Editing         bool                 `json:"editing"`
	Calculator      Calculator           `json:"calculator"`
	Notice          *Notice              `json:"notice,omitempty"`
	LastSubmission  *SubmitResult        `json:"last_submission,omitempty"`
}

// View snapshots the session.
func (s *Session) View() View {
	v := View{
		Date:            s.date,
		ClassID:         s.classID,
		ClassName:       s.className,
		Step:            s.step,
		StepName:        s.step.String(),
		Students:        s.roster.Students(),
		RosterCursor:    s.roster.Cursor(),
		NoStudents:      s.classID != 0 && s.roster.Len() == 0,
		Attendance:      s.roster.Marks().Map(),
		ActivityCursor:  s.activity,
		CurrentActivity: s.CurrentActivity(),
		Activities:      s.counts.Complete(),
		Editing:         s.editing,
		Calculator:      s.calc,
		Notice:          s.notice,
		LastSubmission:  s.last,
	}
	if st, ok := s.roster.Current(); ok {
		v.CurrentStudent = &st
	}
	return v
}
