package reports

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	familydomain "family-finance-go/internal/domain/family"
	reportsdomain "family-finance-go/internal/domain/reports"
	"family-finance-go/internal/export"
	"family-finance-go/internal/transport/httpserver/handler/common"
)

type generateReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Period    string `json:"period"`
	UserID    string `json:"user_id"`
}

func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generate(w, r, "reports.generate")
	if !ok {
		return
	}
	common.WriteJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generate(w, r, "reports.export")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report); err != nil {
		h.log.InternalError("reports.export: render workbook failed", err)
		common.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) generate(w http.ResponseWriter, r *http.Request, op string) (*reportsdomain.Report, bool) {
	var req generateReportRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return nil, false
	}

	start, err := common.ParseDateRequired(req.StartDate, "start_date")
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return nil, false
	}
	end, err := common.ParseDateRequired(req.EndDate, "end_date")
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return nil, false
	}
	period := reportsdomain.Period(strings.TrimSpace(req.Period))
	if period == "" {
		period = reportsdomain.PeriodMonthly
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return nil, false
	}

	scope, err := h.Families.ReportScope(r.Context(), user.ID, req.UserID)
	if err != nil {
		h.writeError(w, op, err, "user_id", user.ID, "target_id", req.UserID)
		return nil, false
	}

	report, err := h.Reports.Generate(r.Context(), reportsdomain.Request{
		Start:   start,
		End:     end,
		Period:  period,
		UserIDs: scope,
	})
	if err != nil {
		h.writeError(w, op, err, "user_id", user.ID, "period", period)
		return nil, false
	}
	return report, true
}

func (h *Handlers) CategoryReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}
	user, scope, ok := h.scope(w, r, "reports.categories")
	if !ok {
		return
	}

	report, err := h.Reports.CategoryReport(r.Context(), scope, start, end)
	if err != nil {
		h.writeError(w, "reports.categories", err, "user_id", user)
		return
	}

	common.WriteJSON(w, http.StatusOK, toCategoryReportResponse(*report))
}

func (h *Handlers) TopExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}
	limit, err := common.ParseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil || limit > common.MaxLimit {
		common.WriteInvalidRequest(w, "invalid limit")
		return
	}
	user, scope, ok := h.scope(w, r, "reports.top_expenses")
	if !ok {
		return
	}

	items, err := h.Reports.TopExpenses(r.Context(), scope, start, end, limit)
	if err != nil {
		h.writeError(w, "reports.top_expenses", err, "user_id", user)
		return
	}

	common.WriteJSON(w, http.StatusOK, toTopExpenseResponses(items))
}

func (h *Handlers) GoalsReport(w http.ResponseWriter, r *http.Request) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Goals.FamilyProgressReport(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "reports.goals", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGoalReportResponses(items))
}

func (h *Handlers) SpendingTrends(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	months, err := common.ParseIntParam(query.Get("months"), 0)
	if err != nil || months > 24 {
		common.WriteInvalidRequest(w, "months must be between 1 and 24")
		return
	}

	user, ok := common.CurrentUser(w, r)
	if !ok {
		return
	}

	target := strings.TrimSpace(query.Get("user_id"))
	if target == "" {
		target = user.ID
	}
	if err := h.Families.AuthorizeTarget(r.Context(), user.ID, target); err != nil {
		h.writeError(w, "reports.spending_trends", err, "user_id", user.ID, "target_id", target)
		return
	}

	trends, err := h.Reports.SpendingTrends(r.Context(), target, months)
	if err != nil {
		h.writeError(w, "reports.spending_trends", err, "user_id", user.ID, "target_id", target)
		return
	}

	common.WriteJSON(w, http.StatusOK, toSpendingTrendsResponse(trends))
}

func (h *Handlers) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	now := time.Now()
	year, err := common.ParseIntParam(query.Get("year"), now.Year())
	if err != nil {
		common.WriteInvalidRequest(w, "invalid year")
		return
	}
	month, err := common.ParseIntParam(query.Get("month"), int(now.Month()))
	if err != nil {
		common.WriteInvalidRequest(w, "invalid month")
		return
	}

	user, scope, ok := h.scope(w, r, "reports.monthly_summary")
	if !ok {
		return
	}

	summary, err := h.Reports.MonthlySummary(r.Context(), scope, year, time.Month(month))
	if err != nil {
		h.writeError(w, "reports.monthly_summary", err, "user_id", user, "year", year, "month", month)
		return
	}

	common.WriteJSON(w, http.StatusOK, toMonthlySummaryResponse(summary))
}

// scope resolves the user ids a report covers from the optional user_id
// query parameter.
func (h *Handlers) scope(w http.ResponseWriter, r *http.Request, op string) (string, []string, bool) {
	user, ok := common.CurrentUser(w, r)
	if !ok {
		return "", nil, false
	}
	target := r.URL.Query().Get("user_id")
	scope, err := h.Families.ReportScope(r.Context(), user.ID, target)
	if err != nil {
		h.writeError(w, op, err, "user_id", user.ID, "target_id", target)
		return "", nil, false
	}
	return user.ID, scope, true
}

func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	query := r.URL.Query()
	start, err := common.ParseDateRequired(query.Get("start_date"), "start_date")
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	end, err := common.ParseDateRequired(query.Get("end_date"), "end_date")
	if err != nil {
		common.WriteInvalidRequest(w, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handlers) writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status, code, message := http.StatusInternalServerError, "", ""
	switch {
	case errors.Is(err, reportsdomain.ErrInvalidPeriod):
		status, code, message = http.StatusBadRequest, "invalid_period", err.Error()
	case errors.Is(err, reportsdomain.ErrInvalidRange):
		status, code, message = http.StatusBadRequest, "invalid_range", err.Error()
	case errors.Is(err, reportsdomain.ErrInvalidMonth):
		status, code, message = http.StatusBadRequest, "invalid_month", err.Error()
	case errors.Is(err, familydomain.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "not enough permissions"
	}

	if status == http.StatusInternalServerError {
		h.log.InternalError(op+": failed", err, attrs...)
		common.WriteInternal(w)
		return
	}
	h.log.BusinessError(op+": "+message, err, attrs...)
	common.WriteError(w, status, code, message)
}
