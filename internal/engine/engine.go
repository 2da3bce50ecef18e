package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/michael-freling/power-e/internal/command"
	"github.com/michael-freling/power-e/internal/schedule"
	"github.com/michael-freling/power-e/internal/store"
	"github.com/sirupsen/logrus"
)

// Status is the run state of the engine
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// Action names written to the action log
const (
	ActionScheduled    = "Daily Shutdown Scheduled"
	ActionStopped      = "Daily shutdown schedule stopped"
	ActionExecuted     = "Shutdown command executed"
	ActionFailed       = "Shutdown failed"
	ActionCancelled    = "Shutdown cancelled by user"
	ActionCancelFailed = "Shutdown cancel failed"
)

const (
	DefaultPollInterval    = time.Second
	DefaultReschedulePause = 2 * time.Second
	DefaultShutdownDelay   = 30 * time.Second

	clockLayout = "03:04 PM"
)

// Confirmer asks the user a yes/no question. ctx expires with the OS grace window.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfigSaver persists the committed shutdown time
type ConfigSaver interface {
	Save(cfg store.Config)
}

// ActionRecorder receives one entry per state transition or trigger event
type ActionRecorder interface {
	Append(entry store.LogEntry)
}

// Snapshot is a read-only view of the engine for presentation layers
type Snapshot struct {
	Status      Status
	TimeOfDay   schedule.TimeOfDay
	NextTrigger time.Time
	// Remaining is the countdown to NextTrigger as of the last poll, never negative
	Remaining time.Duration
	// LastError is the most recent shutdown command failure of the current cycle
	LastError error
	Message   string
	DailyMode bool
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the real clock
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger for status and diagnostics
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfirmer enables the post-trigger cancellation prompt
func WithConfirmer(confirmer Confirmer) Option {
	return func(e *Engine) {
		e.confirmer = confirmer
	}
}

// WithPollInterval sets how often the wait loop re-evaluates the countdown
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.pollInterval = d
	}
}

// WithReschedulePause sets the wait between a successful trigger and the next-day reschedule
func WithReschedulePause(d time.Duration) Option {
	return func(e *Engine) {
		e.reschedulePause = d
	}
}

// WithShutdownDelay sets the grace window passed to the shutdown command
func WithShutdownDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.shutdownDelay = d
	}
}

// Engine runs the daily shutdown cycle. At most one wait loop is active at a time.
type Engine struct {
	invoker         command.ShutdownInvoker
	config          ConfigSaver
	actions         ActionRecorder
	clock           Clock
	logger          logrus.FieldLogger
	confirmer       Confirmer
	pollInterval    time.Duration
	reschedulePause time.Duration
	shutdownDelay   time.Duration
	gracePeriod     time.Duration
	shutdownMessage string

	mu          sync.Mutex
	status      Status
	timeOfDay   schedule.TimeOfDay
	nextTrigger time.Time
	remaining   time.Duration
	lastErr     error
	message     string
	stopCh      chan struct{}
	cycle       uint64

	wg sync.WaitGroup
}

// New creates a stopped engine
func New(invoker command.ShutdownInvoker, config ConfigSaver, actions ActionRecorder, opts ...Option) *Engine {
	e := &Engine{
		invoker:         invoker,
		config:          config,
		actions:         actions,
		clock:           NewRealClock(),
		pollInterval:    DefaultPollInterval,
		reschedulePause: DefaultReschedulePause,
		shutdownDelay:   DefaultShutdownDelay,
		status:          StatusStopped,
		message:         "Set time and start daily shutdown schedule",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		e.logger = discard
	}
	e.shutdownMessage = invoker.Message(e.shutdownDelay)
	e.gracePeriod = invoker.GracePeriod(e.shutdownDelay)
	return e
}

// Start persists tod and begins a new daily cycle, replacing any running one.
// It returns as soon as the wait loop is launched.
func (e *Engine) Start(tod schedule.TimeOfDay) error {
	if err := tod.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.config.Save(store.ConfigFromTimeOfDay(tod))

	if e.status == StatusRunning {
		e.stopLocked()
	}

	now := e.clock.Now()
	next := schedule.NextTrigger(tod, now)
	stop := make(chan struct{})

	e.cycle++
	e.stopCh = stop
	e.status = StatusRunning
	e.timeOfDay = tod
	e.nextTrigger = next
	e.remaining = next.Sub(now)
	e.lastErr = nil
	e.message = fmt.Sprintf("Daily shutdown scheduled for %s every day", next.Format(clockLayout))

	e.record(ActionScheduled, next)
	e.logger.WithField("next_trigger", next.Format(time.RFC3339)).Info("Daily shutdown scheduled")

	e.wg.Add(1)
	go e.run(e.cycle, stop)
	return nil
}

// Stop ends the current cycle. Stopping a stopped engine only logs the request.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}

	scheduled := e.nextTrigger
	e.status = StatusStopped
	e.nextTrigger = time.Time{}
	e.remaining = 0
	e.message = "Scheduler stopped"

	e.record(ActionStopped, scheduled)
	e.logger.Info("Daily shutdown schedule stopped")
}

// IsRunning reports whether a cycle is active
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status == StatusRunning
}

// Snapshot returns the current observable state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Status:      e.status,
		TimeOfDay:   e.timeOfDay,
		NextTrigger: e.nextTrigger,
		Remaining:   e.remaining,
		LastError:   e.lastErr,
		Message:     e.message,
		DailyMode:   true,
	}
}

// Wait blocks until every wait loop and cancellation prompt started so far has returned
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) run(cycle uint64, stop <-chan struct{}) {
	defer e.wg.Done()

	for {
		if isClosed(stop) {
			return
		}

		remaining, scheduled, ok := e.poll(cycle)
		if !ok {
			return
		}
		if remaining <= 0 {
			e.fire(cycle, stop, scheduled)
		}

		select {
		case <-stop:
			return
		case <-e.clock.After(e.pollInterval):
		}
	}
}

// poll refreshes the countdown; ok is false when cycle is no longer current
func (e *Engine) poll(cycle uint64) (time.Duration, time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cycle != cycle || e.status != StatusRunning {
		return 0, time.Time{}, false
	}

	remaining := e.nextTrigger.Sub(e.clock.Now())
	e.remaining = max(remaining, 0)
	return remaining, e.nextTrigger, true
}

func (e *Engine) fire(cycle uint64, stop <-chan struct{}, scheduled time.Time) {
	ctx := context.Background()
	logger := e.logger.WithField("scheduled", scheduled.Format(time.RFC3339))

	if isClosed(stop) {
		return
	}
	if err := e.invoker.CancelPending(ctx); err != nil {
		logger.WithError(err).Debug("No pending shutdown to cancel")
	}
	if isClosed(stop) {
		return
	}

	logger.Info("Executing shutdown")
	err := e.invoker.TriggerShutdown(ctx, e.shutdownDelay, e.shutdownMessage)

	e.mu.Lock()
	current := e.cycle == cycle
	if err != nil {
		if current {
			e.lastErr = err
			e.message = "Shutdown failed: " + err.Error()
		}
		e.record(ActionFailed, scheduled)
		e.mu.Unlock()
		logger.WithError(err).Warn("Shutdown command failed, retrying on next poll")
		return
	}
	if current {
		e.lastErr = nil
		e.message = "Shutdown command executed"
	}
	e.record(ActionExecuted, scheduled)
	e.mu.Unlock()

	e.openCancelWindow(scheduled)

	select {
	case <-stop:
		return
	case <-e.clock.After(e.reschedulePause):
	}
	e.reschedule(cycle)
}

func (e *Engine) reschedule(cycle uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cycle != cycle || e.status != StatusRunning {
		return
	}

	now := e.clock.Now()
	next := schedule.NextTrigger(e.timeOfDay, now)
	e.nextTrigger = next
	e.remaining = next.Sub(now)
	e.message = fmt.Sprintf("Daily shutdown rescheduled for %s tomorrow", next.Format(clockLayout))
	e.logger.WithField("next_trigger", next.Format(time.RFC3339)).Info("Daily shutdown rescheduled")
}

// openCancelWindow asks the user, without blocking the wait loop, whether to abort
// the shutdown that was just issued. The question stays open for the grace period
// the operating system was actually given.
func (e *Engine) openCancelWindow(scheduled time.Time) {
	if e.confirmer == nil {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.gracePeriod)
		defer cancel()

		prompt := fmt.Sprintf("Shutdown in %d seconds. Do you want to cancel?", int(e.shutdownDelay.Seconds()))
		yes, err := e.confirmer.Confirm(ctx, prompt)
		if err != nil {
			e.logger.WithError(err).Debug("Cancellation prompt closed without an answer")
			return
		}
		if !yes {
			return
		}

		if err := e.invoker.CancelPending(context.Background()); err != nil {
			e.mu.Lock()
			e.message = "Cancel failed: " + err.Error()
			e.record(ActionCancelFailed, scheduled)
			e.mu.Unlock()
			e.logger.WithError(err).Warn("Could not cancel shutdown")
			return
		}

		e.mu.Lock()
		e.message = "Shutdown cancelled by user"
		e.record(ActionCancelled, scheduled)
		e.mu.Unlock()
		e.logger.Info("Shutdown cancelled by user")
	}()
}

// record appends to the action log; callers hold e.mu so entries keep their order
func (e *Engine) record(action string, scheduled time.Time) {
	e.actions.Append(store.LogEntry{
		Timestamp:     e.clock.Now(),
		Action:        action,
		ScheduledTime: scheduled,
	})
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
