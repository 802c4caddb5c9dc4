package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
)

func fixedClock(iso string) func() time.Time {
	return func() time.Time {
		parsed, _ := time.Parse(DateLayout, iso)
		return parsed.Add(10 * time.Hour)
	}
}

func mustDate(t *testing.T, iso string) time.Time {
	t.Helper()
	parsed, err := ParseDate(iso)
	require.NoError(t, err)
	return parsed
}

func bucketDates(buckets []CalendarBucket) []string {
	dates := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		dates = append(dates, bucket.Date)
	}
	return dates
}

func TestWeekBucketsFromWednesday(t *testing.T) {
	buckets := WeekBuckets(mustDate(t, "2024-05-15"), nil)

	assert.Equal(t, []string{"2024-05-13", "2024-05-14", "2024-05-15", "2024-05-16", "2024-05-17"}, bucketDates(buckets))
}

func TestWeekBucketsSundayBelongsToPreviousWeek(t *testing.T) {
	buckets := WeekBuckets(mustDate(t, "2024-05-19"), nil)
	assert.Equal(t, "2024-05-13", buckets[0].Date)
}

func TestMonthBucketsPadLeadingAndTrailingDays(t *testing.T) {
	buckets := MonthBuckets(mustDate(t, "2024-06-01"), nil)

	require.Len(t, buckets, MonthBucketCount)
	assert.Equal(t, "2024-05-27", buckets[0].Date)
	assert.False(t, buckets[0].IsCurrentMonth)
	assert.Equal(t, "2024-06-01", buckets[5].Date)
	assert.True(t, buckets[5].IsCurrentMonth)
	assert.Equal(t, "2024-07-07", buckets[41].Date)
	assert.False(t, buckets[41].IsCurrentMonth)
}

func TestBucketCountsForAnyAnchor(t *testing.T) {
	start := mustDate(t, "2023-12-25")
	for i := 0; i < 400; i += 13 {
		anchor := start.AddDate(0, 0, i)
		assert.Len(t, WeekBuckets(anchor, nil), WeekBucketCount)
		assert.Len(t, MonthBuckets(anchor, nil), MonthBucketCount)
	}
}

func TestBucketsPartitionAndSortSessions(t *testing.T) {
	sessions := []models.Session{
		{ID: 1, Date: "2024-05-14", StartTime: "10:00", EndTime: "11:00", Status: models.SessionStatusActive},
		{ID: 2, Date: "2024-05-14", StartTime: "08:00:00", EndTime: "09:00", Status: models.SessionStatusActive},
		{ID: 3, Date: "2024-05-14", StartTime: "10:00", EndTime: "12:00", Status: models.SessionStatusPending},
		{ID: 4, Date: "2024-05-14", StartTime: "07:00", EndTime: "08:00", Status: models.SessionStatusDeleted},
		{ID: 5, Date: "2024-05-18", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusActive},
		{ID: 6, Date: "14/05/2024", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusActive},
		{ID: 7, Date: "2024-05-15", StartTime: "nine", EndTime: "10:00", Status: models.SessionStatusActive},
	}

	buckets := WeekBuckets(mustDate(t, "2024-05-15"), sessions)

	tuesday := buckets[1]
	require.Equal(t, "2024-05-14", tuesday.Date)
	ids := []int64{}
	for _, s := range tuesday.Sessions {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{2, 1, 3}, ids, "sorted by start, ties keep input order, deleted excluded")
	assert.Empty(t, buckets[2].Sessions, "malformed sessions are skipped")

	total := 0
	for _, bucket := range buckets {
		total += len(bucket.Sessions)
	}
	assert.Equal(t, 3, total, "weekend and malformed sessions are not placed")
}

func TestMonthBucketsPlaceSessionsOutsideFocusedMonth(t *testing.T) {
	sessions := []models.Session{
		{ID: 1, Date: "2024-05-28", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusActive},
		{ID: 2, Date: "2024-05-28", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusDeleted},
	}
	buckets := MonthBuckets(mustDate(t, "2024-06-20"), sessions)
	require.Len(t, buckets[1].Sessions, 1)
	assert.Equal(t, int64(1), buckets[1].Sessions[0].ID)
}

func TestBuilderTodayFlagDoesNotChangeContents(t *testing.T) {
	sessions := []models.Session{{ID: 1, Date: "2024-05-16", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusActive}}
	anchor := mustDate(t, "2024-05-15")

	a := NewCalendarBuilder(fixedClock("2024-05-16")).Week(anchor, sessions)
	b := NewCalendarBuilder(fixedClock("2030-01-01")).Week(anchor, sessions)

	assert.True(t, a[3].IsToday)
	assert.False(t, b[3].IsToday)
	for i := range a {
		assert.Equal(t, a[i].Sessions, b[i].Sessions)
	}
}

func TestBuilderTodayUsesClockCalendarDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	late := func() time.Time { return time.Date(2024, 5, 16, 23, 30, 0, 0, jakarta) }

	buckets := NewCalendarBuilder(late).Week(mustDate(t, "2024-05-15"), nil)
	assert.True(t, buckets[3].IsToday)
	assert.False(t, buckets[4].IsToday)
}

func TestWindowRange(t *testing.T) {
	from, to := WindowRange(ViewWeek, mustDate(t, "2024-05-15"))
	assert.Equal(t, "2024-05-13", from)
	assert.Equal(t, "2024-05-17", to)

	from, to = WindowRange(ViewMonth, mustDate(t, "2024-06-15"))
	assert.Equal(t, "2024-05-27", from)
	assert.Equal(t, "2024-07-07", to)
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewWeek, mode)
	mode, err = ParseViewMode("MONTH")
	require.NoError(t, err)
	assert.Equal(t, ViewMonth, mode)
	_, err = ParseViewMode("year")
	assert.Error(t, err)
}
