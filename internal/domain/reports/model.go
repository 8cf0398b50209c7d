package reports

import (
	"time"

	"family-finance-go/internal/domain/transactions"
)

// CategoryTotal is one row of a sum grouped by type and category.
type CategoryTotal struct {
	Type     transactions.Type
	Category transactions.Category
	Amount   float64
	Count    int64
}

type Summary struct {
	TotalIncome   float64
	TotalExpenses float64
	Net           float64
	// Categories holds expense totals for categories with at least one
	// expense in range.
	Categories map[transactions.Category]float64
}

type UserSummary struct {
	UserID   string
	UserName string
	Summary  Summary
}

type PeriodSummary struct {
	Period        string
	Start         time.Time
	End           time.Time
	TotalIncome   float64
	TotalExpenses float64
	Net           float64
}

type Request struct {
	Start   time.Time
	End     time.Time
	Period  Period
	UserIDs []string
}

type Report struct {
	StartDate   time.Time
	EndDate     time.Time
	Period      Period
	Overall     Summary
	ByUser      []UserSummary
	ByPeriod    []PeriodSummary
	GeneratedAt time.Time
}

type CategoryReport struct {
	Expenses map[transactions.Category]float64
	Income   map[transactions.Category]float64
}

type TopExpense struct {
	ID          string
	Amount      float64
	Description string
	Category    transactions.Category
	Date        time.Time
	UserID      string
	UserName    string
}

type MonthTrend struct {
	Year       int
	Month      time.Month
	MonthName  string
	Income     float64
	Expenses   float64
	Net        float64
	Categories map[transactions.Category]float64
}

type SpendingTrends struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Months    []MonthTrend
}

type MonthlySummary struct {
	Year        int
	Month       time.Month
	StartDate   time.Time
	EndDate     time.Time
	Summary     Summary
	Categories  CategoryReport
	TopExpenses []TopExpense
}
