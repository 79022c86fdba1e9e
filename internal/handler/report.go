package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pavelanni/attendance/internal/handler/views"
	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// buildReport resolves the period from the trimester or date query
// parameter, defaulting to today.
func (h *Handler) buildReport(r *http.Request) (model.Report, views.ReportPage, error) {
	q := r.URL.Query()
	p := views.ReportPage{
		Date:           strings.TrimSpace(q.Get("date")),
		Trimester:      strings.TrimSpace(q.Get("trimester")),
		SummaryEnabled: h.summarizer != nil,
	}

	if p.Trimester != "" {
		t, err := model.ParseTrimester(p.Trimester)
		if err != nil {
			return model.Report{}, p, err
		}
		p.Trimester = t.String()
		rep, err := report.ByTrimester(r.Context(), h.store, t)
		if err != nil {
			return rep, p, err
		}
		rep.Title = appI18n.Td(r.Context(), "ReportTitleTrimester", map[string]any{"Trimester": t.String()})
		return rep, p, nil
	}

	if p.Date == "" {
		p.Date = h.config.Today()
	}
	rep, err := report.ByDate(r.Context(), h.store, p.Date)
	if err != nil {
		return rep, p, err
	}
	rep.Title = appI18n.Td(r.Context(), "ReportTitleDate", map[string]any{"Date": p.Date})
	return rep, p, nil
}

func (h *Handler) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery == "" {
		render(w, r, views.ReportsPage(views.ReportPage{Date: h.config.Today(), SummaryEnabled: h.summarizer != nil}))
		return
	}
	rep, p, err := h.buildReport(r)
	if err != nil {
		h.reportError(w, r, p, err)
		return
	}
	p.Report = &rep
	render(w, r, views.ReportsPage(p))
}

func (h *Handler) reportError(w http.ResponseWriter, r *http.Request, p views.ReportPage, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to build report", "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	p.Message = err.Error()
	if rerr := views.ReportsPage(p).Render(r.Context(), w); rerr != nil {
		slog.Error("render error", "error", rerr)
	}
}

func (h *Handler) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, p, err := h.buildReport(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	period := p.Date
	if p.Trimester != "" {
		period = p.Trimester
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, period))
	if err := report.WriteXLSX(r.Context(), w, rep); err != nil {
		slog.Error("failed to write spreadsheet", "error", err)
	}
}

func (h *Handler) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	rep, p, err := h.buildReport(r)
	if err != nil {
		h.reportError(w, r, p, err)
		return
	}
	p.Report = &rep
	if h.summarizer == nil {
		p.Message = appI18n.T(r.Context(), "SummaryUnavailable")
		render(w, r, views.ReportsPage(p))
		return
	}
	summary, err := h.summarizer.Summarize(r.Context(), rep, appI18n.Lang(r.Context()))
	if err != nil {
		slog.Error("summary failed", "title", rep.Title, "error", err)
		p.Message = err.Error()
	} else {
		p.Summary = summary
	}
	render(w, r, views.ReportsPage(p))
}
