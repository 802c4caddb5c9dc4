package planning

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-planner/internal/models"
)

// DateLayout is the ISO date format used for bucket keys.
const DateLayout = "2006-01-02"

const (
	// WeekBucketCount is Monday through Friday.
	WeekBucketCount = 5
	// MonthBucketCount is six rows of seven days.
	MonthBucketCount = 42
)

// ViewMode selects the calendar grid shape.
type ViewMode string

const (
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// ParseViewMode accepts "week" or "month", defaulting to week for empty input.
func ParseViewMode(raw string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewWeek:
		return ViewWeek, nil
	case ViewMonth:
		return ViewMonth, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", raw)
	}
}

// CalendarBucket is one calendar cell and the sessions held on that date.
type CalendarBucket struct {
	Date           string           `json:"date"`
	IsCurrentMonth bool             `json:"is_current_month"`
	IsToday        bool             `json:"is_today"`
	Sessions       []models.Session `json:"sessions"`
}

// CalendarBuilder partitions sessions into week or month buckets. Bucket contents
// depend only on the anchor and the sessions; the clock only drives IsToday.
type CalendarBuilder struct {
	now func() time.Time
}

// NewCalendarBuilder constructs a builder. A nil clock uses time.Now.
func NewCalendarBuilder(now func() time.Time) *CalendarBuilder {
	if now == nil {
		now = time.Now
	}
	return &CalendarBuilder{now: now}
}

var defaultBuilder = NewCalendarBuilder(nil)

// WeekBuckets returns the Monday..Friday buckets of the anchor's week.
func WeekBuckets(anchor time.Time, sessions []models.Session) []CalendarBucket {
	return defaultBuilder.Week(anchor, sessions)
}

// MonthBuckets returns the 42-cell grid of the anchor's month.
func MonthBuckets(anchor time.Time, sessions []models.Session) []CalendarBucket {
	return defaultBuilder.Month(anchor, sessions)
}

// Week builds the five weekday buckets of the week containing anchor.
func (b *CalendarBuilder) Week(anchor time.Time, sessions []models.Session) []CalendarBucket {
	start := MondayOf(anchor)
	return b.fill(start, WeekBucketCount, sessions, func(time.Time) bool { return true })
}

// Month builds the 42 buckets covering the anchor's month, padded with the tail of
// the previous month and the head of the next one.
func (b *CalendarBuilder) Month(anchor time.Time, sessions []models.Session) []CalendarBucket {
	first := FirstOfMonth(anchor)
	start := MondayOf(first)
	return b.fill(start, MonthBucketCount, sessions, func(day time.Time) bool {
		return day.Year() == first.Year() && day.Month() == first.Month()
	})
}

func (b *CalendarBuilder) fill(start time.Time, count int, sessions []models.Session, inMonth func(time.Time) bool) []CalendarBucket {
	byDate := partition(sessions)
	today := dateOnly(b.now()).Format(DateLayout)

	buckets := make([]CalendarBucket, 0, count)
	for i := 0; i < count; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(DateLayout)
		items := byDate[key]
		if items == nil {
			items = []models.Session{}
		}
		buckets = append(buckets, CalendarBucket{
			Date:           key,
			IsCurrentMonth: inMonth(day),
			IsToday:        key == today,
			Sessions:       items,
		})
	}
	return buckets
}

// partition groups placeable sessions by date. Deleted sessions and sessions with
// an unparseable date or time are left out. Each group is stably sorted by start.
func partition(sessions []models.Session) map[string][]models.Session {
	byDate := make(map[string][]models.Session)
	for _, session := range sessions {
		if session.Status == models.SessionStatusDeleted {
			continue
		}
		day, err := time.Parse(DateLayout, strings.TrimSpace(session.Date))
		if err != nil {
			continue
		}
		if _, ok := StartMinutes(session.StartTime); !ok {
			continue
		}
		if _, ok := EndMinutes(session.EndTime); !ok {
			continue
		}
		key := day.Format(DateLayout)
		byDate[key] = append(byDate[key], session)
	}
	for _, items := range byDate {
		sort.SliceStable(items, func(i, j int) bool {
			left, _ := StartMinutes(items[i].StartTime)
			right, _ := StartMinutes(items[j].StartTime)
			return left < right
		})
	}
	return byDate
}

// MondayOf returns midnight UTC of the Monday of t's week. Sunday counts as day 7.
func MondayOf(t time.Time) time.Time {
	day := dateOnly(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// FirstOfMonth returns midnight UTC of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD anchor.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return parsed, nil
}

// WindowRange returns the first and last bucket dates of a view.
func WindowRange(mode ViewMode, anchor time.Time) (string, string) {
	if mode == ViewMonth {
		start := MondayOf(FirstOfMonth(anchor))
		return start.Format(DateLayout), start.AddDate(0, 0, MonthBucketCount-1).Format(DateLayout)
	}
	start := MondayOf(anchor)
	return start.Format(DateLayout), start.AddDate(0, 0, WeekBucketCount-1).Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
