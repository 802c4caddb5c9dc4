package planning

import "time"

// Navigator owns the anchor date and view mode of the calendar. The anchor is kept
// canonical: the Monday of the week in week mode, the 1st in month mode.
type Navigator struct {
	mode   ViewMode
	anchor time.Time
	now    func() time.Time
}

// NewNavigator starts on today's week or month.
func NewNavigator(mode ViewMode, now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	if mode != ViewMonth {
		mode = ViewWeek
	}
	n := &Navigator{mode: mode, now: now}
	n.Today()
	return n
}

// Mode returns the active view.
func (n *Navigator) Mode() ViewMode { return n.mode }

// Anchor returns the canonical anchor date.
func (n *Navigator) Anchor() time.Time { return n.anchor }

// AnchorISO returns the anchor as YYYY-MM-DD.
func (n *Navigator) AnchorISO() string { return n.anchor.Format(DateLayout) }

// SetMode switches the view and re-canonicalises the anchor for it.
func (n *Navigator) SetMode(mode ViewMode) {
	if mode != ViewMonth {
		mode = ViewWeek
	}
	n.mode = mode
	n.anchor = n.canonical(n.anchor)
}

// NextWeek moves to the following Monday.
func (n *Navigator) NextWeek() { n.anchor = MondayOf(n.anchor.AddDate(0, 0, 7)) }

// PrevWeek moves to the previous Monday.
func (n *Navigator) PrevWeek() { n.anchor = MondayOf(n.anchor.AddDate(0, 0, -7)) }

// NextMonth moves to the 1st of the following month. Clamping to day 1 first keeps
// Jan 31 from overflowing into March.
func (n *Navigator) NextMonth() { n.anchor = FirstOfMonth(n.anchor).AddDate(0, 1, 0) }

// PrevMonth moves to the 1st of the previous month.
func (n *Navigator) PrevMonth() { n.anchor = FirstOfMonth(n.anchor).AddDate(0, -1, 0) }

// Next steps forward by one unit of the current view.
func (n *Navigator) Next() {
	if n.mode == ViewMonth {
		n.NextMonth()
		return
	}
	n.NextWeek()
}

// Prev steps back by one unit of the current view.
func (n *Navigator) Prev() {
	if n.mode == ViewMonth {
		n.PrevMonth()
		return
	}
	n.PrevWeek()
}

// JumpToDate moves the anchor to the view containing iso.
func (n *Navigator) JumpToDate(iso string) error {
	parsed, err := ParseDate(iso)
	if err != nil {
		return err
	}
	n.anchor = n.canonical(parsed)
	return nil
}

// Today resets the anchor to the current week's Monday or the current month's 1st.
func (n *Navigator) Today() {
	n.anchor = n.canonical(n.now())
}

// Window returns the first and last dates covered by the current view.
func (n *Navigator) Window() (string, string) {
	return WindowRange(n.mode, n.anchor)
}

func (n *Navigator) canonical(t time.Time) time.Time {
	if n.mode == ViewMonth {
		return FirstOfMonth(t)
	}
	return MondayOf(t)
}
