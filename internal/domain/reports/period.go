package reports

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Bucket is an inclusive range of calendar days. Start and End are midnight
// of the first and last day.
type Bucket struct {
	Key   string
	Start time.Time
	End   time.Time
}

// Bounds returns the store query range [from, to). It covers every instant
// from Start 00:00:00 through End 23:59:59.999999.
func (b Bucket) Bounds() (time.Time, time.Time) {
	return b.Start, b.End.AddDate(0, 0, 1)
}

// Buckets partitions the days from start to end (both inclusive) by period.
// The first bucket starts at start and the last one ends at end; buckets in
// between cover whole days, weeks (Monday first), months or years.
func Buckets(start, end time.Time, period Period) ([]Bucket, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	start = dayOf(start)
	end = dayOf(end)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	var buckets []Bucket
	switch period {
	case PeriodDaily:
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{Key: day.Format("2006-01-02"), Start: day, End: day})
		}

	case PeriodWeekly:
		for current := start; !current.After(end); {
			weekStart := current.AddDate(0, 0, -mondayOffset(current.Weekday()))
			weekEnd := weekStart.AddDate(0, 0, 6)
			year, week := weekStart.ISOWeek()

			bucket := Bucket{
				Key:   fmt.Sprintf("%d-W%d", year, week),
				Start: maxTime(weekStart, start),
				End:   minTime(weekEnd, end),
			}
			buckets = append(buckets, bucket)
			current = bucket.End.AddDate(0, 0, 1)
		}

	case PeriodMonthly:
		for current := firstOfMonth(start); !current.After(end); current = current.AddDate(0, 1, 0) {
			monthEnd := current.AddDate(0, 1, -1)
			buckets = append(buckets, Bucket{
				Key:   current.Format("2006-01"),
				Start: maxTime(current, start),
				End:   minTime(monthEnd, end),
			})
		}

	case PeriodYearly:
		for year := start.Year(); year <= end.Year(); year++ {
			yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, start.Location())
			yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, start.Location())
			buckets = append(buckets, Bucket{
				Key:   fmt.Sprintf("%04d", year),
				Start: maxTime(yearStart, start),
				End:   minTime(yearEnd, end),
			})
		}
	}

	return buckets, nil
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return first, first.AddDate(0, 1, -1)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// mondayOffset is the number of days since the most recent Monday.
func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
