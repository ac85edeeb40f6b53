package report

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type Bucket struct {
	Label       string
	Amount      int64
	PeriodStart time.Time
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const monthWeeks = 4

// BuildTimeBuckets sums expenses into the fixed buckets of period, in
// chronological order. Buckets are laid out from start in start's location:
// seven days for a week, four seven-day spans for a month (days after the
// 28th fall outside every bucket) and twelve calendar months of start's year.
func BuildTimeBuckets(period Period, start time.Time, txs []*transaction.Transaction) ([]Bucket, error) {
	loc := start.Location()
	origin := startOfDay(start)

	var buckets []Bucket

	var spans [][2]time.Time

	switch period {
	case PeriodWeek:
		for i, label := range weekdayLabels {
			lo := origin.AddDate(0, 0, i)
			buckets = append(buckets, Bucket{Label: label, PeriodStart: lo})
			spans = append(spans, [2]time.Time{lo, lo.AddDate(0, 0, 1)})
		}
	case PeriodMonth:
		for i := range monthWeeks {
			lo := origin.AddDate(0, 0, 7*i)
			buckets = append(buckets, Bucket{Label: fmt.Sprintf("Week %d", i+1), PeriodStart: lo})
			spans = append(spans, [2]time.Time{lo, lo.AddDate(0, 0, 7)})
		}
	case PeriodYear:
		for m := time.January; m <= time.December; m++ {
			lo := time.Date(start.Year(), m, 1, 0, 0, 0, 0, loc)
			buckets = append(buckets, Bucket{Label: m.String()[:3], PeriodStart: lo})
			spans = append(spans, [2]time.Time{lo, lo.AddDate(0, 1, 0)})
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidPeriod, period)
	}

	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}

		// Compare calendar positions in the bucket location, not instants
		// in whatever zone the store returned.
		at := tx.Date.In(loc)

		for i, span := range spans {
			if !at.Before(span[0]) && at.Before(span[1]) {
				buckets[i].Amount += tx.Amount
				break
			}
		}
	}

	return buckets, nil
}
