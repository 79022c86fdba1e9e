package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
)

// percentFormat is the built-in "0.00%" number format.
const percentFormat = 10

// WriteXLSX renders a report as a workbook with a summary sheet and a
// per-student sheet. Headers follow the localizer in ctx.
func WriteXLSX(ctx context.Context, w io.Writer, rep model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := i18n.T(ctx, "SheetSummary")
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummarySheet(ctx, f, summary, rep); err != nil {
		return err
	}

	students := i18n.T(ctx, "SheetStudents")
	if _, err := f.NewSheet(students); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := writeStudentSheet(ctx, f, students, rep); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(ctx context.Context, f *excelize.File, sheet string, rep model.Report) error {
	header := []any{
		i18n.T(ctx, "ReportClass"),
		i18n.T(ctx, "ReportDates"),
		i18n.T(ctx, "ReportPresent"),
		i18n.T(ctx, "ReportAbsent"),
		i18n.T(ctx, "ReportRate"),
	}
	for _, kind := range model.ActivityKinds {
		header = append(header, i18n.ActivityLabel(ctx, kind))
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{rep.Title, rep.From, rep.To}); err != nil {
		return err
	}
	if err := setRow(f, sheet, 3, header); err != nil {
		return err
	}

	row := 4
	for _, c := range rep.Classes {
		values := []any{c.ClassName, strings.Join(c.Dates, ", "), c.Present, c.Absent, c.AttendanceRate}
		for _, kind := range model.ActivityKinds {
			values = append(values, c.Activities.Get(kind))
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []any{i18n.T(ctx, "ReportTotal"), "", rep.Totals.Present, rep.Totals.Absent, rep.Totals.AttendanceRate}
	for _, kind := range model.ActivityKinds {
		totals = append(totals, rep.Totals.Activities.Get(kind))
	}
	if err := setRow(f, sheet, row, totals); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: percentFormat})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 3)
	if err := f.SetCellStyle(sheet, "A3", last, bold); err != nil {
		return err
	}
	lastTotal, _ := excelize.CoordinatesToCellName(len(header), row)
	firstTotal, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellStyle(sheet, firstTotal, lastTotal, bold); err != nil {
		return err
	}
	rateTop, _ := excelize.CoordinatesToCellName(5, 4)
	rateBottom, _ := excelize.CoordinatesToCellName(5, row)
	if err := f.SetCellStyle(sheet, rateTop, rateBottom, percent); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func writeStudentSheet(ctx context.Context, f *excelize.File, sheet string, rep model.Report) error {
	header := []any{
		i18n.T(ctx, "ReportClass"),
		i18n.T(ctx, "ReportStudent"),
		i18n.T(ctx, "ReportPresent"),
		i18n.T(ctx, "ReportAbsent"),
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	row := 2
	for _, c := range rep.Classes {
		for _, st := range c.Students {
			if err := setRow(f, sheet, row, []any{c.ClassName, st.Name, st.Present, st.Absent}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
