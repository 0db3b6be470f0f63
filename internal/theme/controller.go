package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/saaga0h/daybreak/internal/solar"
	"github.com/saaga0h/daybreak/pkg/config"
)

// Controller owns the theme state machine: the selected mode, the solar
// times for the current location, and the single pending wake-up armed at
// the next sunrise/sunset boundary.
//
// Every entry point serializes through one mutex, so a decide-apply-
// reschedule sequence always runs to completion before the next trigger
// is handled. Invariants:
//
//   - at most one wake-up is pending, and only while mode is auto
//   - arming always cancels the previous handle first
//   - day is the half-open interval [sunrise, sunset)
//   - without solar data night is hour < dayHour or hour >= nightHour,
//     and no wake-up is armed (fallback does not self-schedule)
type Controller struct {
	mu sync.Mutex

	clock   Clock
	sched   Scheduler
	store   Store
	applier Applier
	logger  *slog.Logger

	dayHour   int
	nightHour int

	mode        Mode
	times       *solar.SunTimes
	latitude    float64
	longitude   float64
	hasLocation bool

	pending   Handle
	pendingAt time.Time

	lastApplied bool
	applied     bool
}

// NewController creates a theme controller with injected dependencies.
// The initial mode is auto until Restore is called.
func NewController(clock Clock, sched Scheduler, store Store, applier Applier, cfg *config.Config, logger *slog.Logger) *Controller {
	return &Controller{
		clock:     clock,
		sched:     sched,
		store:     store,
		applier:   applier,
		logger:    logger,
		dayHour:   cfg.FallbackDayHour,
		nightHour: cfg.FallbackNightHour,
		mode:      ModeAuto,
	}
}

// Restore loads the persisted mode and last applied flag. Read failures
// leave the in-memory defaults in place; a malformed persisted mode is
// treated as auto.
func (c *Controller) Restore(ctx context.Context) {
	mode, err := c.store.LoadMode(ctx)
	if err != nil {
		c.logger.Debug("No persisted theme mode, defaulting to auto", "error", err)
		mode = ModeAuto
	}

	c.mu.Lock()
	c.mode = mode
	if last, err := c.store.LoadLastApplied(ctx); err == nil {
		c.lastApplied = last
	}
	c.mu.Unlock()

	c.logger.Info("Restored theme state", "mode", mode)
}

// Mode returns the current theme mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches to the given mode: manual modes cancel any pending
// wake-up and apply their fixed theme, auto recomputes from solar data
// (or the fixed-hour fallback) and rearms. The mode is persisted
// best-effort.
func (c *Controller) SetMode(mode Mode) {
	if !mode.Valid() {
		c.logger.Warn("Ignoring invalid theme mode", "mode", mode)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setModeLocked(mode)
}

// Toggle flips to the manual mode opposite of the currently displayed
// theme. In auto mode this leaves auto: displaying night toggles to
// manual day and vice versa.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := ModeNight
	if c.displayedNightLocked() {
		target = ModeDay
	}
	c.setModeLocked(target)
}

// SetLocation records a successful geolocation fix and, in auto mode,
// recomputes solar times for the current day, reapplies and rearms.
func (c *Controller) SetLocation(latitude, longitude float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latitude = latitude
	c.longitude = longitude
	c.hasLocation = true
	c.times = nil

	c.logger.Info("Location resolved", "latitude", latitude, "longitude", longitude)

	if c.mode == ModeAuto {
		c.refreshLocked()
	}
}

// LocationFailed records a geolocation failure. Not fatal: the fixed-hour
// fallback governs until a later fix arrives, and the degraded behavior is
// the only observable consequence.
func (c *Controller) LocationFailed(err error) {
	c.logger.Info("Geolocation unavailable, using fixed-hour fallback", "error", err)
}

// Refresh runs a full decide-apply-reschedule pass. Wired to externally
// triggered recomputes such as UI visibility and resize events.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
}

// IsNight reports the night decision for the given instant. A zero
// instant means "now". Manual modes answer from the mode itself; auto
// answers from solar times when present, otherwise from the fixed-hour
// fallback. No side effects.
func (c *Controller) IsNight(at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeDay:
		return false
	case ModeNight:
		return true
	}

	if at.IsZero() {
		at = c.clock.Now()
	}
	return c.isNightLocked(at)
}

// NextSwitchTime returns the instant of the pending theme switch, if one
// is armed. Diagnostics and testing only.
func (c *Controller) NextSwitchTime() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return time.Time{}, false
	}
	return c.pendingAt, true
}

// Shutdown cancels any pending wake-up
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

func (c *Controller) setModeLocked(mode Mode) {
	c.mode = mode

	if err := c.store.SaveMode(context.Background(), mode); err != nil {
		c.logger.Warn("Failed to persist theme mode", "error", err)
	}

	c.refreshLocked()
}

// refreshLocked runs one decide-apply-reschedule sequence to completion
func (c *Controller) refreshLocked() {
	now := c.clock.Now()

	if c.mode != ModeAuto {
		c.cancelPendingLocked()
		c.applyLocked(c.mode == ModeNight, now)
		return
	}

	c.recomputeTimesLocked(now)
	night := c.isNightLocked(now)
	c.applyLocked(night, now)
	c.scheduleLocked(now, night)
}

// recomputeTimesLocked refreshes solar times when the stored ones are
// absent or belong to a previous calendar day. Times are always computed
// fresh for the current day, never derived from stale date arithmetic.
func (c *Controller) recomputeTimesLocked(now time.Time) {
	if !c.hasLocation {
		return
	}
	if c.times != nil && sameDay(c.times.Sunrise, now) {
		return
	}

	if st, ok := solar.Times(now, c.latitude, c.longitude); ok {
		c.times = &st
		c.logger.Debug("Computed solar times",
			"sunrise", st.Sunrise.Format(time.RFC3339),
			"sunset", st.Sunset.Format(time.RFC3339))
	} else {
		// Polar day or polar night: no defined boundary today, the
		// fixed-hour fallback governs.
		c.times = nil
		c.logger.Debug("No defined sunrise/sunset for current day",
			"latitude", c.latitude)
	}
}

func (c *Controller) isNightLocked(t time.Time) bool {
	if c.times != nil {
		return t.Before(c.times.Sunrise) || !t.Before(c.times.Sunset)
	}
	h := t.Hour()
	return h < c.dayHour || h >= c.nightHour
}

// applyLocked renders a decision. Idempotent: applying the same decision
// twice leaves the same observable state.
func (c *Controller) applyLocked(night bool, now time.Time) {
	state := State{
		Theme:     "day",
		IsNight:   night,
		Mode:      c.mode,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
	if night {
		state.Theme = "night"
	}
	if c.hasLocation {
		daylight := solar.DaylightAt(now, c.latitude, c.longitude)
		state.Daylight = &daylight
	}

	c.applier.Apply(state)
	c.lastApplied = night
	c.applied = true

	if err := c.store.SaveLastApplied(context.Background(), night); err != nil {
		c.logger.Warn("Failed to persist last applied theme", "error", err)
	}
}

// scheduleLocked arms the single wake-up for the next boundary strictly
// after now. Only called in auto mode.
func (c *Controller) scheduleLocked(now time.Time, night bool) {
	c.cancelPendingLocked()

	if c.times == nil {
		// Fallback mode does not self-schedule; the boundary is only
		// re-evaluated on the next externally triggered recompute.
		return
	}

	var boundary time.Time
	switch {
	case !night:
		boundary = c.times.Sunset
	case now.Before(c.times.Sunrise):
		boundary = c.times.Sunrise
	default:
		// Past today's sunset: the next boundary is tomorrow's sunrise,
		// computed fresh for the new calendar day.
		next, ok := solar.Times(now.AddDate(0, 0, 1), c.latitude, c.longitude)
		if !ok {
			return
		}
		boundary = next.Sunrise
	}

	c.pendingAt = boundary
	c.pending = c.sched.Arm(boundary, c.onTimerFire)

	c.logger.Debug("Armed theme switch", "at", boundary.Format(time.RFC3339))
}

func (c *Controller) onTimerFire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = nil
	c.pendingAt = time.Time{}

	// A mode change before firing must already have cancelled this
	// wake-up; re-check anyway.
	if c.mode != ModeAuto {
		return
	}

	c.refreshLocked()
}

func (c *Controller) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.sched.Cancel(c.pending)
	c.pending = nil
	c.pendingAt = time.Time{}
}

// displayedNightLocked answers what the user currently sees
func (c *Controller) displayedNightLocked() bool {
	if c.applied {
		return c.lastApplied
	}
	if c.mode != ModeAuto {
		return c.mode == ModeNight
	}
	return c.isNightLocked(c.clock.Now())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
