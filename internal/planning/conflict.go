package planning

import (
	"strings"

	"github.com/noah-isme/sma-planner/internal/models"
)

// ConflictSlot is the (date, start, end) triple of the last rejected save.
type ConflictSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ConflictSurface tracks at most one rejected slot. Both calendar views read it
// through IsConflicting, so highlighting cannot diverge between them.
type ConflictSurface struct {
	slot *ConflictSlot
}

// Mark replaces the tracked slot.
func (c *ConflictSurface) Mark(date, startTime, endTime string) {
	c.slot = &ConflictSlot{
		Date:      strings.TrimSpace(date),
		StartTime: Normalize(startTime),
		EndTime:   Normalize(endTime),
	}
}

// Clear forgets the tracked slot.
func (c *ConflictSurface) Clear() {
	c.slot = nil
}

// Slot returns the tracked slot, if any.
func (c *ConflictSurface) Slot() (ConflictSlot, bool) {
	if c == nil || c.slot == nil {
		return ConflictSlot{}, false
	}
	return *c.slot, true
}

// IsConflicting reports whether session sits exactly on the tracked slot.
func (c *ConflictSurface) IsConflicting(session models.Session) bool {
	if c == nil || c.slot == nil {
		return false
	}
	return c.slot.Date == strings.TrimSpace(session.Date) &&
		c.slot.StartTime == Normalize(session.StartTime) &&
		c.slot.EndTime == Normalize(session.EndTime)
}

// CellEntry is a session as rendered in a calendar cell.
type CellEntry struct {
	Session     models.Session `json:"session"`
	Conflicting bool           `json:"conflicting"`
}

// CalendarCell is a bucket decorated for display.
type CalendarCell struct {
	Date           string      `json:"date"`
	IsCurrentMonth bool        `json:"is_current_month"`
	IsToday        bool        `json:"is_today"`
	Entries        []CellEntry `json:"entries"`
}

// RenderCells decorates buckets with conflict highlights. Week and month views both
// go through here.
func RenderCells(buckets []CalendarBucket, surface *ConflictSurface) []CalendarCell {
	cells := make([]CalendarCell, 0, len(buckets))
	for _, bucket := range buckets {
		entries := make([]CellEntry, 0, len(bucket.Sessions))
		for _, session := range bucket.Sessions {
			entries = append(entries, CellEntry{Session: session, Conflicting: surface.IsConflicting(session)})
		}
		cells = append(cells, CalendarCell{
			Date:           bucket.Date,
			IsCurrentMonth: bucket.IsCurrentMonth,
			IsToday:        bucket.IsToday,
			Entries:        entries,
		})
	}
	return cells
}
