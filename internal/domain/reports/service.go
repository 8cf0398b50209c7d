package reports

import (
	"context"
	"time"

	"family-finance-go/internal/config"
	"family-finance-go/internal/domain/transactions"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTopExpensesLimit    = 5
	defaultSpendingTrendMonths = 6
	defaultConcurrency         = 4
)

// Users resolves display names for report rows.
type Users interface {
	Names(ctx context.Context, userIDs []string) (map[string]string, error)
}

type Service struct {
	repo        Repository
	users       Users
	loc         *time.Location
	topLimit    int
	trendMonths int
	concurrency int
	now         func() time.Time
}

func NewService(repo Repository, users Users, cfg config.ReportsConfig, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:        repo,
		users:       users,
		loc:         loc,
		topLimit:    cfg.TopExpensesLimit,
		trendMonths: cfg.SpendingTrendMonths,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}
	if s.topLimit <= 0 {
		s.topLimit = defaultTopExpensesLimit
	}
	if s.trendMonths <= 0 {
		s.trendMonths = defaultSpendingTrendMonths
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	return s
}

// Generate builds the overall, per-user and per-bucket summaries for the
// inclusive day range of req.
func (s *Service) Generate(ctx context.Context, req Request) (*Report, error) {
	start, end := s.day(req.Start), s.day(req.End)
	buckets, err := Buckets(start, end, req.Period)
	if err != nil {
		return nil, err
	}

	from, to := Bucket{Start: start, End: end}.Bounds()
	overall, err := s.summary(ctx, req.UserIDs, from, to)
	if err != nil {
		return nil, err
	}

	names, err := s.names(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}

	byUser := make([]UserSummary, len(req.UserIDs))
	byPeriod := make([]PeriodSummary, len(buckets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, userID := range req.UserIDs {
		group.Go(func() error {
			summary, err := s.summary(groupCtx, []string{userID}, from, to)
			if err != nil {
				return err
			}
			byUser[i] = UserSummary{UserID: userID, UserName: names[userID], Summary: summary}
			return nil
		})
	}
	for i, bucket := range buckets {
		group.Go(func() error {
			bucketFrom, bucketTo := bucket.Bounds()
			totals, err := s.totals(groupCtx, req.UserIDs, bucketFrom, bucketTo)
			if err != nil {
				return err
			}
			byPeriod[i] = PeriodSummary{
				Period:        bucket.Key,
				Start:         bucket.Start,
				End:           bucket.End,
				TotalIncome:   totals.Income,
				TotalExpenses: totals.Expense,
				Net:           totals.Income - totals.Expense,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		StartDate:   start,
		EndDate:     end,
		Period:      req.Period,
		Overall:     overall,
		ByUser:      byUser,
		ByPeriod:    byPeriod,
		GeneratedAt: s.now(),
	}, nil
}

// CategoryReport splits the range's totals by category, separately for
// expenses and income.
func (s *Service) CategoryReport(ctx context.Context, userIDs []string, start, end time.Time) (*CategoryReport, error) {
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	return s.categoryReport(ctx, userIDs, from, to)
}

// TopExpenses returns the largest expenses in range. Equal amounts keep store
// insertion order. A non-positive limit uses the configured default.
func (s *Service) TopExpenses(ctx context.Context, userIDs []string, start, end time.Time, limit int) ([]TopExpense, error) {
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.topLimit
	}
	return s.topExpenses(ctx, userIDs, from, to, limit)
}

// SpendingTrends summarises the last months calendar months of userID,
// ending with the current month.
func (s *Service) SpendingTrends(ctx context.Context, userID string, months int) (*SpendingTrends, error) {
	if months <= 0 {
		months = s.trendMonths
	}

	now := s.now().In(s.loc)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	first := current.AddDate(0, -(months - 1), 0)
	_, last := MonthRange(current.Year(), current.Month(), s.loc)

	buckets, err := Buckets(first, last, PeriodMonthly)
	if err != nil {
		return nil, err
	}

	trends := make([]MonthTrend, len(buckets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, bucket := range buckets {
		group.Go(func() error {
			from, to := bucket.Bounds()
			summary, err := s.summary(groupCtx, []string{userID}, from, to)
			if err != nil {
				return err
			}
			trends[i] = MonthTrend{
				Year:       bucket.Start.Year(),
				Month:      bucket.Start.Month(),
				MonthName:  bucket.Start.Month().String(),
				Income:     summary.TotalIncome,
				Expenses:   summary.TotalExpenses,
				Net:        summary.Net,
				Categories: summary.Categories,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &SpendingTrends{
		UserID:    userID,
		StartDate: first,
		EndDate:   last,
		Months:    trends,
	}, nil
}

// MonthlySummary combines the summary, category report and top expenses of a
// single calendar month.
func (s *Service) MonthlySummary(ctx context.Context, userIDs []string, year int, month time.Month) (*MonthlySummary, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}

	start, end := MonthRange(year, month, s.loc)
	from, to := Bucket{Start: start, End: end}.Bounds()

	result := MonthlySummary{Year: year, Month: month, StartDate: start, EndDate: end}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		summary, err := s.summary(groupCtx, userIDs, from, to)
		result.Summary = summary
		return err
	})
	group.Go(func() error {
		categories, err := s.categoryReport(groupCtx, userIDs, from, to)
		if err == nil {
			result.Categories = *categories
		}
		return err
	})
	group.Go(func() error {
		top, err := s.topExpenses(groupCtx, userIDs, from, to, defaultTopExpensesLimit)
		result.TopExpenses = top
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) summary(ctx context.Context, userIDs []string, from, to time.Time) (Summary, error) {
	totals, err := s.totals(ctx, userIDs, from, to)
	if err != nil {
		return Summary{}, err
	}

	categories := make(map[transactions.Category]float64)
	if len(userIDs) > 0 {
		rows, err := s.repo.CategoryTotals(ctx, userIDs, from.UTC(), to.UTC())
		if err != nil {
			return Summary{}, err
		}
		for _, row := range rows {
			if row.Type == transactions.TypeExpense && row.Count > 0 {
				categories[row.Category] += row.Amount
			}
		}
	}

	return Summary{
		TotalIncome:   totals.Income,
		TotalExpenses: totals.Expense,
		Net:           totals.Income - totals.Expense,
		Categories:    categories,
	}, nil
}

func (s *Service) totals(ctx context.Context, userIDs []string, from, to time.Time) (transactions.Totals, error) {
	if len(userIDs) == 0 {
		return transactions.Totals{}, nil
	}
	return s.repo.Totals(ctx, userIDs, from.UTC(), to.UTC())
}

func (s *Service) categoryReport(ctx context.Context, userIDs []string, from, to time.Time) (*CategoryReport, error) {
	report := CategoryReport{
		Expenses: make(map[transactions.Category]float64),
		Income:   make(map[transactions.Category]float64),
	}
	if len(userIDs) == 0 {
		return &report, nil
	}

	rows, err := s.repo.CategoryTotals(ctx, userIDs, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Count == 0 {
			continue
		}
		switch row.Type {
		case transactions.TypeExpense:
			report.Expenses[row.Category] += row.Amount
		case transactions.TypeIncome:
			report.Income[row.Category] += row.Amount
		}
	}
	return &report, nil
}

func (s *Service) topExpenses(ctx context.Context, userIDs []string, from, to time.Time, limit int) ([]TopExpense, error) {
	if len(userIDs) == 0 {
		return []TopExpense{}, nil
	}

	items, err := s.repo.TopExpenses(ctx, userIDs, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(items))
	for _, item := range items {
		ownerIDs = append(ownerIDs, item.UserID)
	}
	names, err := s.names(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	result := make([]TopExpense, 0, len(items))
	for _, item := range items {
		result = append(result, TopExpense{
			ID:          item.ID,
			Amount:      item.Amount,
			Description: item.Description,
			Category:    item.Category,
			Date:        item.Date,
			UserID:      item.UserID,
			UserName:    names[item.UserID],
		})
	}
	return result, nil
}

// names maps ids to display names, falling back to "Unknown".
func (s *Service) names(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if s.users != nil && len(userIDs) > 0 {
		found, err := s.users.Names(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		names = found
	}
	for _, id := range userIDs {
		if _, ok := names[id]; !ok {
			names[id] = "Unknown"
		}
	}
	return names, nil
}

func (s *Service) bounds(start, end time.Time) (time.Time, time.Time, error) {
	start, end = s.day(start), s.day(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	from, to := Bucket{Start: start, End: end}.Bounds()
	return from, to, nil
}

// day interprets t as a calendar date in the reporting location.
func (s *Service) day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
