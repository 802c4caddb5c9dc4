package planning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
)

// SessionRemote persists sessions and detects overlaps.
type SessionRemote interface {
	ListSessions(ctx context.Context, params QueryParams) (*dto.SessionList, error)
	CreateSession(ctx context.Context, payload dto.SessionPayload) (*models.Session, error)
	UpdateSession(ctx context.Context, id int64, payload dto.SessionPayload) (*models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// CatalogRemote serves the lookup lists behind the form selectors.
type CatalogRemote interface {
	ListSchoolYears(ctx context.Context) ([]models.SchoolYear, error)
	ListPeriods(ctx context.Context, schoolYearID int64) ([]models.Period, error)
	ListClasses(ctx context.Context, schoolYearID int64, period string) ([]models.Class, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListClassRooms(ctx context.Context) ([]models.ClassRoom, error)
	ListSpecializations(ctx context.Context) ([]models.Specialization, error)
	ListSessionTypes(ctx context.Context, status string) ([]models.SessionType, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// Remote is everything the planner needs from the backend.
type Remote interface {
	SessionRemote
	CatalogRemote
}

// RequestKey identifies a session fetch. A response whose key is no longer current
// is dropped.
type RequestKey struct {
	View   ViewMode
	Anchor string
	Params QueryParams
}

type fetched struct {
	sessions []models.Session
	window   []models.Session
	meta     models.Pagination
}

// maxWindowPages bounds how many list pages one calendar window may span.
const maxWindowPages = 100

// Options tunes a Planner.
type Options struct {
	View   ViewMode
	Limit  int
	Now    func() time.Time
	Logger *zap.Logger
}

// Planner is the screen-level state of the planning section: filters, calendar
// anchor, the session form and the conflict slot. All mutation goes through its
// methods. It is safe for concurrent use; remote calls run outside the lock.
type Planner struct {
	mu sync.Mutex

	remote  Remote
	logger  *zap.Logger
	query   *QueryState
	nav     *Navigator
	builder *CalendarBuilder
	cascade *CascadingSelection

	form       FormState
	conflicts  ConflictSurface
	alert      *FormAlert
	submitting bool

	cache    map[RequestKey]fetched
	sessions []models.Session
	window   []models.Session
	loaded   RequestKey
}

// NewPlanner constructs a planner on today's window with an empty form.
func NewPlanner(remote Remote, opts Options) *Planner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Planner{
		remote:  remote,
		logger:  opts.Logger,
		query:   NewQueryState(opts.Limit),
		nav:     NewNavigator(opts.View, opts.Now),
		builder: NewCalendarBuilder(opts.Now),
		cascade: NewCascadingSelection(nil),
		form:    NewFormState(),
		cache:   map[RequestKey]fetched{},
	}
}

// SetStatus sets the status filter and returns to page 1.
func (p *Planner) SetStatus(status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.SetStatus(status)
}

// SetFilter sets an id filter; 0 clears it.
func (p *Planner) SetFilter(field FilterField, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.SetFilter(field, id)
}

// SetPage moves the session list to page.
func (p *Planner) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.SetPage(page)
}

// SetLimit changes the page size of the session list.
func (p *Planner) SetLimit(limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.SetLimit(limit)
}

// Filters returns the current filter state.
func (p *Planner) Filters() FilterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.Filters()
}

// PageMeta returns the pagination of the last applied fetch.
func (p *Planner) PageMeta() PageMeta {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.Meta()
}

// RequestKey returns the key the next fetch would use.
func (p *Planner) RequestKey() RequestKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestKeyLocked()
}

func (p *Planner) requestKeyLocked() RequestKey {
	from, to := p.nav.Window()
	return RequestKey{View: p.nav.Mode(), Anchor: p.nav.AnchorISO(), Params: p.query.Params(from, to)}
}

// SetView switches between week and month. Like every move it clears the
// conflict slot.
func (p *Planner) SetView(mode ViewMode) { p.navigate(func(n *Navigator) { n.SetMode(mode) }) }

// NextWeek moves the anchor one week forward.
func (p *Planner) NextWeek() { p.navigate((*Navigator).NextWeek) }

// PrevWeek moves the anchor one week back.
func (p *Planner) PrevWeek() { p.navigate((*Navigator).PrevWeek) }

// NextMonth moves the anchor to the 1st of the next month.
func (p *Planner) NextMonth() { p.navigate((*Navigator).NextMonth) }

// PrevMonth moves the anchor to the 1st of the previous month.
func (p *Planner) PrevMonth() { p.navigate((*Navigator).PrevMonth) }

// Today moves the anchor back to the current week or month.
func (p *Planner) Today() { p.navigate((*Navigator).Today) }

// JumpToDate moves to the window containing iso.
func (p *Planner) JumpToDate(iso string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.nav.JumpToDate(iso); err != nil {
		return err
	}
	p.conflicts.Clear()
	return nil
}

// Anchor returns the current anchor date and view.
func (p *Planner) Anchor() (time.Time, ViewMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav.Anchor(), p.nav.Mode()
}

func (p *Planner) navigate(move func(*Navigator)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	move(p.nav)
	p.conflicts.Clear()
}

// Load fetches the sessions for the current key unless they are already cached.
func (p *Planner) Load(ctx context.Context) error {
	p.mu.Lock()
	key := p.requestKeyLocked()
	if cached, ok := p.cache[key]; ok {
		p.applyLocked(key, cached)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.fetch(ctx, key)
}

// Refresh drops the session cache and fetches the current key again.
func (p *Planner) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.cache = map[RequestKey]fetched{}
	key := p.requestKeyLocked()
	p.mu.Unlock()
	return p.fetch(ctx, key)
}

// fetch loads the requested page for the session list and every page of the date
// window for the calendar, so buckets never lose sessions past the page limit.
func (p *Planner) fetch(ctx context.Context, key RequestKey) error {
	list, err := p.listPage(ctx, key.Params)
	if err != nil {
		return err
	}
	window, err := p.collectWindow(ctx, key.Params, list)
	if err != nil {
		return err
	}
	result := fetched{sessions: list.Data, window: window, meta: list.Meta}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[key] = result
	if current := p.requestKeyLocked(); current != key {
		p.logger.Debug("discarding superseded session fetch",
			zap.String("fetched_anchor", key.Anchor),
			zap.String("current_anchor", current.Anchor))
		return nil
	}
	p.applyLocked(key, result)
	return nil
}

func (p *Planner) listPage(ctx context.Context, params QueryParams) (*dto.SessionList, error) {
	list, err := p.remote.ListSessions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if list == nil {
		list = &dto.SessionList{}
	}
	return list, nil
}

// collectWindow walks the window from page 1 until the remote reports no next
// page. The already fetched page is reused rather than requested twice.
func (p *Planner) collectWindow(ctx context.Context, params QueryParams, fetchedPage *dto.SessionList) ([]models.Session, error) {
	requested := params.Page
	params.Page = 1
	window := []models.Session{}
	for {
		list := fetchedPage
		if params.Page != requested {
			var err error
			if list, err = p.listPage(ctx, params); err != nil {
				return nil, err
			}
		}
		window = append(window, list.Data...)
		meta := DerivePageMeta(params.Page, params.Limit, list.Meta)
		if !meta.HasNext || len(list.Data) == 0 {
			return window, nil
		}
		if params.Page >= maxWindowPages {
			p.logger.Warn("calendar window truncated",
				zap.String("date_from", params.DateFrom),
				zap.String("date_to", params.DateTo),
				zap.Int("pages", params.Page))
			return window, nil
		}
		params.Page++
	}
}

func (p *Planner) applyLocked(key RequestKey, result fetched) {
	p.sessions = result.sessions
	p.window = result.window
	p.loaded = key
	p.query.ApplyResponse(result.meta)
}

// Stale reports whether the applied sessions belong to a different request key
// than the current filters and anchor.
func (p *Planner) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded != p.requestKeyLocked()
}

// Sessions returns the applied page of the session list.
func (p *Planner) Sessions() []models.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Session, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// WeekView renders the anchor week with conflict highlights.
func (p *Planner) WeekView() []CalendarCell {
	p.mu.Lock()
	defer p.mu.Unlock()
	return RenderCells(p.builder.Week(p.nav.Anchor(), p.window), &p.conflicts)
}

// MonthView renders the anchor month with conflict highlights.
func (p *Planner) MonthView() []CalendarCell {
	p.mu.Lock()
	defer p.mu.Unlock()
	return RenderCells(p.builder.Month(p.nav.Anchor(), p.window), &p.conflicts)
}

// View renders whichever view is active.
func (p *Planner) View() []CalendarCell {
	p.mu.Lock()
	mode := p.nav.Mode()
	p.mu.Unlock()
	if mode == ViewMonth {
		return p.MonthView()
	}
	return p.WeekView()
}

// IsConflicting reports whether session matches the tracked conflict slot.
func (p *Planner) IsConflicting(session models.Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conflicts.IsConflicting(session)
}

// ConflictSlot returns the tracked conflict slot, if any.
func (p *Planner) ConflictSlot() (ConflictSlot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conflicts.Slot()
}

// NewSession resets the form and the conflict slot.
func (p *Planner) NewSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = NewFormState()
	p.alert = nil
	p.conflicts.Clear()
}

// EditSession loads an existing session into the form.
func (p *Planner) EditSession(session models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = FormFromSession(session)
	p.alert = nil
}

// SetField writes a form field through the cascade.
func (p *Planner) SetField(field Field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, err := p.cascade.Apply(p.form, field, value)
	if err != nil {
		return err
	}
	p.form = next
	return nil
}

// Form returns a copy of the form state.
func (p *Planner) Form() FormState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form.Clone()
}

// Alert returns the form-level alert of the last rejected save.
func (p *Planner) Alert() *FormAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.alert == nil {
		return nil
	}
	alert := *p.alert
	return &alert
}

// Submitting reports whether a save is in flight.
func (p *Planner) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting
}

// StartTimeOptions lists the selectable start times.
func (p *Planner) StartTimeOptions() []string { return GenerateTimeOptions() }

// EndTimeOptions lists the end times after the chosen start.
func (p *Planner) EndTimeOptions() []string {
	p.mu.Lock()
	start := p.form.Value(FieldStartTime)
	p.mu.Unlock()
	return EndTimeOptions(start)
}

// ResolveSpecialization looks up a class in the loaded catalog.
func (p *Planner) ResolveSpecialization(classID int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cascade.ResolveSpecialization(classID)
}

// LoadClasses loads the classes of the form's school year and period.
func (p *Planner) LoadClasses(ctx context.Context) ([]models.Class, error) {
	p.mu.Lock()
	form := p.form
	p.mu.Unlock()
	if !ClassSelectable(form) {
		return nil, fmt.Errorf("%w: select a school year and period first", ErrFieldDisabled)
	}
	classes, err := p.remote.ListClasses(ctx, form.ID(FieldSchoolYear), form.Value(FieldPeriod))
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	p.mu.Lock()
	p.cascade.SetClasses(classes)
	p.mu.Unlock()
	return classes, nil
}

// SessionTypeOptions returns the session types a new session may use.
func (p *Planner) SessionTypeOptions(ctx context.Context) ([]models.SessionType, error) {
	types, err := p.remote.ListSessionTypes(ctx, string(models.SessionTypeActive))
	if err != nil {
		return nil, fmt.Errorf("list session types: %w", err)
	}
	active := make([]models.SessionType, 0, len(types))
	for _, item := range types {
		if item.Status == models.SessionTypeActive {
			active = append(active, item)
		}
	}
	return active, nil
}

// Submit saves the form. Local validation failures never reach the remote side.
// Remote failures are classified into form state: an overlap marks the conflict
// slot, anything else only sets the alert. On success the form and conflict slot
// reset and the session list is refetched.
func (p *Planner) Submit(ctx context.Context) (*models.Session, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	p.conflicts.Clear()
	p.alert = nil
	if verr := p.form.Validate(); verr != nil {
		p.form.Errors = verr.Fields
		p.mu.Unlock()
		return nil, verr
	}
	payload := p.form.Payload()
	sessionID := p.form.SessionID
	p.submitting = true
	p.mu.Unlock()

	var (
		saved *models.Session
		err   error
	)
	if sessionID == 0 {
		saved, err = p.remote.CreateSession(ctx, payload)
	} else {
		saved, err = p.remote.UpdateSession(ctx, sessionID, payload)
	}

	p.mu.Lock()
	p.submitting = false
	if err != nil {
		kind := Classify(err)
		p.alert = &FormAlert{Kind: kind, Message: err.Error()}
		if kind == FailureConflict {
			p.conflicts.Mark(payload.Date, payload.StartTime, payload.EndTime)
			p.logger.Info("session save rejected as overlapping",
				zap.String("date", payload.Date),
				zap.String("start_time", payload.StartTime),
				zap.String("end_time", payload.EndTime))
		} else {
			p.logger.Warn("session save failed", zap.Error(err))
		}
		p.mu.Unlock()
		return nil, &SubmitError{Kind: kind, Err: err}
	}
	p.conflicts.Clear()
	p.form = NewFormState()
	p.mu.Unlock()

	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("refresh after save failed", zap.Error(err))
	}
	return saved, nil
}

// Delete removes a session and refetches the list.
func (p *Planner) Delete(ctx context.Context, id int64) error {
	if err := p.remote.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn("refresh after delete failed", zap.Error(err))
	}
	return nil
}
