package report_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

var wib = time.FixedZone("WIB", 7*60*60)

func expense(amount int64, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{Amount: amount, Type: transaction.TypeExpense, Date: date}
}

func income(amount int64, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{Amount: amount, Type: transaction.TypeIncome, Date: date}
}

func labels(buckets []report.Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label
	}

	return out
}

func amounts(buckets []report.Bucket) []int64 {
	out := make([]int64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Amount
	}

	return out
}

func TestBuildTimeBuckets_Counts(t *testing.T) {
	start := time.Date(2024, 10, 14, 0, 0, 0, 0, wib)

	for period, want := range map[report.Period]int{
		report.PeriodWeek:  7,
		report.PeriodMonth: 4,
		report.PeriodYear:  12,
	} {
		buckets, err := report.BuildTimeBuckets(period, start, nil)
		require.NoError(t, err)
		assert.Len(t, buckets, want, string(period))
	}

	_, err := report.BuildTimeBuckets("fortnight", start, nil)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}

func TestBuildTimeBuckets_Week(t *testing.T) {
	monday := time.Date(2024, 10, 14, 0, 0, 0, 0, wib)

	txs := []*transaction.Transaction{
		expense(50_000, monday.Add(8*time.Hour)),
		expense(30_000, monday.Add(23*time.Hour)),
		income(1_000_000, monday.Add(9*time.Hour)),
		expense(20_000, monday.AddDate(0, 0, 6).Add(20*time.Hour)),
		expense(99_000, monday.AddDate(0, 0, -1)),
		expense(99_000, monday.AddDate(0, 0, 7)),
		// 18:00 UTC on Monday is already Tuesday in WIB.
		expense(10_000, time.Date(2024, 10, 14, 18, 0, 0, 0, time.UTC)),
		{Amount: -5_000, Type: transaction.TypeExpense, Date: monday},
	}

	buckets, err := report.BuildTimeBuckets(report.PeriodWeek, monday, txs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, labels(buckets))
	assert.Equal(t, []int64{80_000, 10_000, 0, 0, 0, 0, 20_000}, amounts(buckets))
	assert.True(t, buckets[6].PeriodStart.Equal(monday.AddDate(0, 0, 6)))
}

func TestBuildTimeBuckets_WeekSumConservation(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, wib)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		var txs []*transaction.Transaction

		var want int64

		for range rng.IntN(40) {
			at := monday.Add(time.Duration(rng.IntN(21*24*60)-7*24*60) * time.Minute)
			tx := expense(rng.Int64N(1_000_000)+1, at)

			if rng.IntN(4) == 0 {
				tx.Type = transaction.TypeIncome
			}

			if tx.Type == transaction.TypeExpense && !at.Before(monday) && at.Before(monday.AddDate(0, 0, 7)) {
				want += tx.Amount
			}

			txs = append(txs, tx)
		}

		buckets, err := report.BuildTimeBuckets(report.PeriodWeek, monday, txs)
		require.NoError(t, err)

		var got int64
		for _, b := range buckets {
			got += b.Amount
		}

		assert.Equal(t, want, got)
	}
}

func TestBuildTimeBuckets_Month(t *testing.T) {
	first := time.Date(2024, 10, 1, 0, 0, 0, 0, wib)

	txs := []*transaction.Transaction{
		expense(100, time.Date(2024, 10, 1, 10, 0, 0, 0, wib)),
		expense(200, time.Date(2024, 10, 7, 23, 59, 0, 0, wib)),
		expense(300, time.Date(2024, 10, 8, 0, 0, 0, 0, wib)),
		expense(400, time.Date(2024, 10, 28, 12, 0, 0, 0, wib)),
		// Days 29 to 31 fall outside the four fixed weeks.
		expense(500, time.Date(2024, 10, 29, 12, 0, 0, 0, wib)),
		expense(600, time.Date(2024, 10, 31, 12, 0, 0, 0, wib)),
	}

	buckets, err := report.BuildTimeBuckets(report.PeriodMonth, first, txs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4"}, labels(buckets))
	assert.Equal(t, []int64{300, 300, 0, 400}, amounts(buckets))
}

func TestBuildTimeBuckets_Year(t *testing.T) {
	// A start that is not January 1 still yields the whole year.
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, wib)

	txs := []*transaction.Transaction{
		expense(100, time.Date(2024, 1, 3, 0, 0, 0, 0, wib)),
		expense(200, time.Date(2024, 2, 29, 23, 0, 0, 0, wib)),
		expense(300, time.Date(2024, 12, 31, 23, 59, 0, 0, wib)),
		expense(999, time.Date(2023, 12, 31, 23, 59, 0, 0, wib)),
		income(999, time.Date(2024, 5, 1, 0, 0, 0, 0, wib)),
	}

	buckets, err := report.BuildTimeBuckets(report.PeriodYear, start, txs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, labels(buckets))
	assert.Equal(t, []int64{100, 200, 0, 0, 0, 0, 0, 0, 0, 0, 0, 300}, amounts(buckets))
}
