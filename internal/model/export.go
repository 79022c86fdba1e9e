package model

// Report is the aggregated view of attendance and activities over a date range.
type Report struct {
	Title   string         `json:"title"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Classes []ClassSummary `json:"classes"`
	Totals  ReportTotals   `json:"totals"`
}

// ClassSummary holds one class's figures for a report period.
type ClassSummary struct {
	ClassID        int64          `json:"class_id"`
	ClassName      string         `json:"class_name"`
	Dates          []string       `json:"dates"`
	Present        int            `json:"present"`
	Absent         int            `json:"absent"`
	AttendanceRate float64        `json:"attendance_rate"`
	Activities     ActivityCounts `json:"activities"`
	Students       []StudentTally `json:"students,omitempty"`
}

// StudentTally counts one student's marks in the period.
type StudentTally struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
}

// ReportTotals sums all classes in a report.
type ReportTotals struct {
	Present        int            `json:"present"`
	Absent         int            `json:"absent"`
	AttendanceRate float64        `json:"attendance_rate"`
	Activities     ActivityCounts `json:"activities"`
}

// RecordSet is the raw material of a report: every class, every student and
// all records of a date range.
type RecordSet struct {
	From       string
	To         string
	Classes    []Class
	Students   []Student
	Attendance []AttendanceRecord
	Activities []ActivityRecord
}
