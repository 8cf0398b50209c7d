package budget

import (
	"context"
	"time"

	"family-finance-go/internal/config"
	"family-finance-go/internal/domain/notifications"
	"family-finance-go/internal/domain/transactions"
)

// TotalsReader sums a user's income and expenses over [from, to).
type TotalsReader interface {
	SumByType(ctx context.Context, userID string, from, to time.Time) (transactions.Totals, error)
}

// Dispatcher creates a notification at most once per window.
type Dispatcher interface {
	DispatchOnce(ctx context.Context, draft notifications.Draft, from, to time.Time, suppressedBy ...notifications.Type) (*notifications.Notification, bool, error)
}

type Level string

const (
	LevelNone     Level = ""
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Result describes one evaluation of a user's monthly budget.
type Result struct {
	UserID   string
	Income   float64
	Expenses float64
	Ratio    float64
	Level    Level
	Notified bool
}

type Monitor struct {
	totals     TotalsReader
	dispatcher Dispatcher
	warning    float64
	critical   float64
	loc        *time.Location
	now        func() time.Time
}

func NewMonitor(totals TotalsReader, dispatcher Dispatcher, cfg config.BudgetConfig) *Monitor {
	return &Monitor{
		totals:     totals,
		dispatcher: dispatcher,
		warning:    cfg.WarningThreshold,
		critical:   cfg.CriticalThreshold,
		loc:        cfg.Location(),
		now:        time.Now,
	}
}

// Check satisfies transactions.BudgetChecker.
func (m *Monitor) Check(ctx context.Context, userID string) error {
	_, err := m.Evaluate(ctx, userID)
	return err
}

// Evaluate compares this month's expenses with this month's income. A user
// gets at most one budget notification per month: whichever of warning or
// critical is crossed first consumes the month. Critical is tested first, so
// a month that crosses both thresholds at once only gets the critical one.
func (m *Monitor) Evaluate(ctx context.Context, userID string) (Result, error) {
	from, to := MonthWindow(m.now(), m.loc)
	result := Result{UserID: userID}

	totals, err := m.totals.SumByType(ctx, userID, from, to)
	if err != nil {
		return result, err
	}
	result.Income = totals.Income
	result.Expenses = totals.Expense

	if totals.Income <= 0 {
		return result, nil
	}

	result.Ratio = totals.Expense / totals.Income
	var (
		draft        notifications.Draft
		suppressedBy []notifications.Type
	)
	switch {
	case result.Ratio >= m.critical:
		result.Level = LevelCritical
		draft = notifications.BudgetCritical(userID, result.Ratio)
		suppressedBy = []notifications.Type{notifications.TypeBudgetWarning}
	case result.Ratio >= m.warning:
		result.Level = LevelWarning
		draft = notifications.BudgetWarning(userID, result.Ratio)
		suppressedBy = []notifications.Type{notifications.TypeBudgetCritical}
	default:
		return result, nil
	}

	_, created, err := m.dispatcher.DispatchOnce(ctx, draft, from, to, suppressedBy...)
	if err != nil {
		return result, err
	}
	result.Notified = created
	return result, nil
}

// MonthWindow returns [first instant of the month of now, first instant of
// the next month) in loc, expressed in UTC.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}
