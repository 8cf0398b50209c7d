package reports

import (
	"time"

	goalsdomain "family-finance-go/internal/domain/goals"
	reportsdomain "family-finance-go/internal/domain/reports"
	"family-finance-go/internal/domain/transactions"
	goalshandler "family-finance-go/internal/transport/httpserver/handler/goals"
)

const dateLayout = "2006-01-02"

type summaryResponse struct {
	TotalIncome   float64            `json:"total_income"`
	TotalExpenses float64            `json:"total_expenses"`
	Net           float64            `json:"net"`
	Categories    map[string]float64 `json:"category_breakdown"`
}

type userSummaryResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	summaryResponse
}

type periodSummaryResponse struct {
	Period        string  `json:"period"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Net           float64 `json:"net"`
}

type reportResponse struct {
	StartDate   string                  `json:"start_date"`
	EndDate     string                  `json:"end_date"`
	Period      string                  `json:"period"`
	Overall     summaryResponse         `json:"overall_summary"`
	ByUser      []userSummaryResponse   `json:"user_summaries"`
	ByPeriod    []periodSummaryResponse `json:"period_summaries"`
	GeneratedAt time.Time               `json:"generated_at"`
}

type categoryReportResponse struct {
	Expenses map[string]float64 `json:"expenses"`
	Income   map[string]float64 `json:"income"`
}

type topExpenseResponse struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
}

type monthTrendResponse struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	MonthName  string             `json:"month_name"`
	Income     float64            `json:"income"`
	Expenses   float64            `json:"expenses"`
	Net        float64            `json:"net"`
	Categories map[string]float64 `json:"categories"`
}

type spendingTrendsResponse struct {
	UserID    string               `json:"user_id"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Months    []monthTrendResponse `json:"months"`
}

type monthlySummaryResponse struct {
	Year        int                    `json:"year"`
	Month       int                    `json:"month"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Summary     summaryResponse        `json:"summary"`
	Categories  categoryReportResponse `json:"categories"`
	TopExpenses []topExpenseResponse   `json:"top_expenses"`
}

type goalReportResponse struct {
	ID                string                        `json:"id"`
	Title             string                        `json:"title"`
	CreatorID         string                        `json:"creator_id"`
	CreatorName       string                        `json:"creator_name"`
	ParticipantIDs    []string                      `json:"participant_ids"`
	ContributionCount int64                         `json:"contribution_count"`
	Progress          goalshandler.ProgressResponse `json:"progress"`
}

func toSummaryResponse(summary reportsdomain.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:   summary.TotalIncome,
		TotalExpenses: summary.TotalExpenses,
		Net:           summary.Net,
		Categories:    categoryMap(summary.Categories),
	}
}

func toReportResponse(report *reportsdomain.Report) reportResponse {
	byUser := make([]userSummaryResponse, 0, len(report.ByUser))
	for _, item := range report.ByUser {
		byUser = append(byUser, userSummaryResponse{
			UserID:          item.UserID,
			UserName:        item.UserName,
			summaryResponse: toSummaryResponse(item.Summary),
		})
	}
	byPeriod := make([]periodSummaryResponse, 0, len(report.ByPeriod))
	for _, item := range report.ByPeriod {
		byPeriod = append(byPeriod, periodSummaryResponse{
			Period:        item.Period,
			StartDate:     item.Start.Format(dateLayout),
			EndDate:       item.End.Format(dateLayout),
			TotalIncome:   item.TotalIncome,
			TotalExpenses: item.TotalExpenses,
			Net:           item.Net,
		})
	}
	return reportResponse{
		StartDate:   report.StartDate.Format(dateLayout),
		EndDate:     report.EndDate.Format(dateLayout),
		Period:      string(report.Period),
		Overall:     toSummaryResponse(report.Overall),
		ByUser:      byUser,
		ByPeriod:    byPeriod,
		GeneratedAt: report.GeneratedAt,
	}
}

func toCategoryReportResponse(report reportsdomain.CategoryReport) categoryReportResponse {
	return categoryReportResponse{
		Expenses: categoryMap(report.Expenses),
		Income:   categoryMap(report.Income),
	}
}

func toTopExpenseResponses(items []reportsdomain.TopExpense) []topExpenseResponse {
	response := make([]topExpenseResponse, 0, len(items))
	for _, item := range items {
		response = append(response, topExpenseResponse{
			ID:          item.ID,
			Amount:      item.Amount,
			Description: item.Description,
			Category:    string(item.Category),
			Date:        item.Date,
			UserID:      item.UserID,
			UserName:    item.UserName,
		})
	}
	return response
}

func toSpendingTrendsResponse(trends *reportsdomain.SpendingTrends) spendingTrendsResponse {
	months := make([]monthTrendResponse, 0, len(trends.Months))
	for _, month := range trends.Months {
		months = append(months, monthTrendResponse{
			Year:       month.Year,
			Month:      int(month.Month),
			MonthName:  month.MonthName,
			Income:     month.Income,
			Expenses:   month.Expenses,
			Net:        month.Net,
			Categories: categoryMap(month.Categories),
		})
	}
	return spendingTrendsResponse{
		UserID:    trends.UserID,
		StartDate: trends.StartDate.Format(dateLayout),
		EndDate:   trends.EndDate.Format(dateLayout),
		Months:    months,
	}
}

func toMonthlySummaryResponse(summary *reportsdomain.MonthlySummary) monthlySummaryResponse {
	return monthlySummaryResponse{
		Year:        summary.Year,
		Month:       int(summary.Month),
		StartDate:   summary.StartDate.Format(dateLayout),
		EndDate:     summary.EndDate.Format(dateLayout),
		Summary:     toSummaryResponse(summary.Summary),
		Categories:  toCategoryReportResponse(summary.Categories),
		TopExpenses: toTopExpenseResponses(summary.TopExpenses),
	}
}

func toGoalReportResponses(items []goalsdomain.GoalReport) []goalReportResponse {
	response := make([]goalReportResponse, 0, len(items))
	for _, item := range items {
		participants := item.Goal.ParticipantIDs
		if participants == nil {
			participants = []string{}
		}
		response = append(response, goalReportResponse{
			ID:                item.Goal.ID,
			Title:             item.Goal.Title,
			CreatorID:         item.Goal.CreatorID,
			CreatorName:       item.CreatorName,
			ParticipantIDs:    participants,
			ContributionCount: item.ContributionCount,
			Progress:          goalshandler.ToProgressResponse(item.Progress),
		})
	}
	return response
}

func categoryMap(values map[transactions.Category]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for category, amount := range values {
		out[string(category)] = amount
	}
	return out
}
