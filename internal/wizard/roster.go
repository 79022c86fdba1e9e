package wizard

import "github.com/pavelanni/attendance/internal/model"

// Marks is an insertion-ordered map of student id to present flag.
// Submission replays marks in the order they were first recorded.
type Marks struct {
	order []int64
	byID  map[int64]bool
}

// NewMarks returns an empty Marks.
func NewMarks() *Marks {
	return &Marks{byID: make(map[int64]bool)}
}

// Set records a mark, keeping the original position on overwrite.
func (m *Marks) Set(studentID int64, present bool) {
	if _, ok := m.byID[studentID]; !ok {
		m.order = append(m.order, studentID)
	}
	m.byID[studentID] = present
}

// Get returns the mark for a student and whether one exists.
func (m *Marks) Get(studentID int64) (present, ok bool) {
	present, ok = m.byID[studentID]
	return present, ok
}

// Len returns the number of marked students.
func (m *Marks) Len() int {
	return len(m.order)
}

// Each calls fn for every mark in insertion order.
func (m *Marks) Each(fn func(studentID int64, present bool)) {
	for _, id := range m.order {
		fn(id, m.byID[id])
	}
}

// Map returns a copy of the marks keyed by student id.
func (m *Marks) Map() map[int64]bool {
	out := make(map[int64]bool, len(m.byID))
	for id, p := range m.byID {
		out[id] = p
	}
	return out
}

// Roster walks the active students of a class one at a time.
type Roster struct {
	students []model.Student
	cursor   int
	marks    *Marks
}

// NewRoster builds a walker over students in the order given.
func NewRoster(students []model.Student) *Roster {
	return &Roster{students: students, marks: NewMarks()}
}

// Len returns the number of students on the roster.
func (r *Roster) Len() int {
	return len(r.students)
}

// Cursor returns the index of the student being presented.
func (r *Roster) Cursor() int {
	return r.cursor
}

// Students returns the roster snapshot.
func (r *Roster) Students() []model.Student {
	return r.students
}

// Current returns the student under the cursor, or false for an empty roster.
func (r *Roster) Current() (model.Student, bool) {
	if r.cursor < 0 || r.cursor >= len(r.students) {
		return model.Student{}, false
	}
	return r.students[r.cursor], true
}

// Marks returns the recorded marks.
func (r *Roster) Marks() *Marks {
	return r.marks
}

// Mark records present/absent for a student and advances the cursor. It
// reports true when the cursor was on the last student, which completes
// the walk. Ids not on the roster are recorded without complaint.
func (r *Roster) Mark(studentID int64, present bool) bool {
	r.marks.Set(studentID, present)
	if len(r.students) == 0 {
		return false
	}
	if r.cursor < len(r.students)-1 {
		r.cursor++
		return false
	}
	return true
}

// Previous moves the cursor back one student. Marks are never erased.
func (r *Roster) Previous() {
	if r.cursor > 0 {
		r.cursor--
	}
}
