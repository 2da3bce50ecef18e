package command

//go:generate mockgen -destination=mock_shutdown.go -package=command . ShutdownInvoker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Platform identifies the family of shutdown commands to use
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
)

const (
	// DefaultCancelTimeout bounds a single "abort scheduled shutdown" command
	DefaultCancelTimeout = 10 * time.Second
	// DefaultTriggerTimeout bounds a single "shut down in N" command
	DefaultTriggerTimeout = 30 * time.Second
)

var (
	ErrShutdownCommandFailed = errors.New("shutdown command failed")
	ErrUnsupportedPlatform   = errors.New("unsupported platform")
)

// ShutdownInvoker schedules and aborts an operating system shutdown
type ShutdownInvoker interface {
	// CancelPending aborts a scheduled shutdown, if any
	CancelPending(ctx context.Context) error
	// TriggerShutdown asks the operating system to power off after delay
	TriggerShutdown(ctx context.Context, delay time.Duration, message string) error
	// Message returns the warning text shown to logged-in users for a shutdown after delay
	Message(delay time.Duration) string
	// GracePeriod returns how long the operating system actually waits when asked for delay
	GracePeriod(delay time.Duration) time.Duration
	// Platform returns the platform family of the invoker
	Platform() Platform
}

// InvokerOption customizes command timeouts
type InvokerOption func(*invoker)

// WithCancelTimeout overrides DefaultCancelTimeout
func WithCancelTimeout(d time.Duration) InvokerOption {
	return func(i *invoker) {
		i.cancelTimeout = d
	}
}

// WithTriggerTimeout overrides DefaultTriggerTimeout
func WithTriggerTimeout(d time.Duration) InvokerOption {
	return func(i *invoker) {
		i.triggerTimeout = d
	}
}

// NewShutdownInvoker selects the variant for goos. An empty goos means runtime.GOOS.
func NewShutdownInvoker(runner Runner, goos string, opts ...InvokerOption) (ShutdownInvoker, error) {
	if goos == "" {
		goos = runtime.GOOS
	}

	switch Platform(goos) {
	case PlatformWindows:
		return NewWindowsShutdown(runner, opts...), nil
	case PlatformLinux:
		return NewLinuxShutdown(runner, opts...), nil
	case PlatformDarwin:
		return NewMacShutdown(runner, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

type invoker struct {
	runner         Runner
	cancelTimeout  time.Duration
	triggerTimeout time.Duration
}

func newInvoker(runner Runner, opts []InvokerOption) invoker {
	i := invoker{
		runner:         runner,
		cancelTimeout:  DefaultCancelTimeout,
		triggerTimeout: DefaultTriggerTimeout,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

// run executes one command bounded by timeout.
// Timeouts wrap both ErrShutdownCommandFailed and context.DeadlineExceeded.
func (i *invoker) run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := strings.Join(append([]string{name}, args...), " ")
	_, stderr, err := i.runner.Run(ctx, name, args...)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out after %s: %w", ErrShutdownCommandFailed, argv, timeout, context.DeadlineExceeded)
	}
	if stderr != "" {
		return fmt.Errorf("%w: %s: %v (stderr: %s)", ErrShutdownCommandFailed, argv, err, stderr)
	}
	return fmt.Errorf("%w: %s: %v", ErrShutdownCommandFailed, argv, err)
}

func wholeMinutes(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}
	return int(math.Ceil(delay.Minutes()))
}

// minutesArg renders delay the way POSIX shutdown expects it, rounded up to whole minutes
func minutesArg(delay time.Duration) string {
	minutes := wholeMinutes(delay)
	if minutes == 0 {
		return "now"
	}
	return "+" + strconv.Itoa(minutes)
}

func wholeSeconds(delay time.Duration) int {
	return max(int(delay/time.Second), 0)
}

// WindowsShutdown drives shutdown.exe
type WindowsShutdown struct {
	invoker
}

// NewWindowsShutdown creates the Windows variant
func NewWindowsShutdown(runner Runner, opts ...InvokerOption) *WindowsShutdown {
	return &WindowsShutdown{invoker: newInvoker(runner, opts)}
}

// CancelPending runs "shutdown /a"
func (w *WindowsShutdown) CancelPending(ctx context.Context) error {
	return w.run(ctx, w.cancelTimeout, "shutdown", "/a")
}

// TriggerShutdown runs "shutdown /s /t <seconds> /c <message>"
func (w *WindowsShutdown) TriggerShutdown(ctx context.Context, delay time.Duration, message string) error {
	seconds := strconv.Itoa(wholeSeconds(delay))
	return w.run(ctx, w.triggerTimeout, "shutdown", "/s", "/t", seconds, "/c", message)
}

func (w *WindowsShutdown) Message(delay time.Duration) string {
	return fmt.Sprintf("Your PC will shut down in %d seconds. Save your work.", wholeSeconds(delay))
}

// GracePeriod is delay truncated to whole seconds, as passed to /t
func (w *WindowsShutdown) GracePeriod(delay time.Duration) time.Duration {
	return time.Duration(wholeSeconds(delay)) * time.Second
}

func (w *WindowsShutdown) Platform() Platform {
	return PlatformWindows
}

// LinuxShutdown drives systemd/sysvinit shutdown, escalating through sudo when needed
type LinuxShutdown struct {
	invoker
}

// NewLinuxShutdown creates the Linux variant
func NewLinuxShutdown(runner Runner, opts ...InvokerOption) *LinuxShutdown {
	return &LinuxShutdown{invoker: newInvoker(runner, opts)}
}

// CancelPending runs "shutdown -c"
func (l *LinuxShutdown) CancelPending(ctx context.Context) error {
	return l.run(ctx, l.cancelTimeout, "shutdown", "-c")
}

// TriggerShutdown runs "shutdown -h +<minutes> <message>" and retries with sudo
// when the unprivileged attempt fails. A timed out attempt is not retried.
func (l *LinuxShutdown) TriggerShutdown(ctx context.Context, delay time.Duration, message string) error {
	args := []string{"-h", minutesArg(delay), message}

	err := l.run(ctx, l.triggerTimeout, "shutdown", args...)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return err
	}

	if sudoErr := l.run(ctx, l.triggerTimeout, "sudo", append([]string{"shutdown"}, args...)...); sudoErr != nil {
		return fmt.Errorf("failed to schedule shutdown with and without sudo: %w", sudoErr)
	}
	return nil
}

func (l *LinuxShutdown) Message(time.Duration) string {
	return "Daily Shutdown"
}

// GracePeriod is delay rounded up to whole minutes
func (l *LinuxShutdown) GracePeriod(delay time.Duration) time.Duration {
	return time.Duration(wholeMinutes(delay)) * time.Minute
}

func (l *LinuxShutdown) Platform() Platform {
	return PlatformLinux
}

// MacShutdown drives the BSD shutdown binary, which always needs root
type MacShutdown struct {
	invoker
}

// NewMacShutdown creates the macOS variant
func NewMacShutdown(runner Runner, opts ...InvokerOption) *MacShutdown {
	return &MacShutdown{invoker: newInvoker(runner, opts)}
}

// CancelPending runs "sudo shutdown -c"
func (m *MacShutdown) CancelPending(ctx context.Context) error {
	return m.run(ctx, m.cancelTimeout, "sudo", "shutdown", "-c")
}

// TriggerShutdown runs "sudo shutdown -h +<minutes>". The message is not passed on.
func (m *MacShutdown) TriggerShutdown(ctx context.Context, delay time.Duration, _ string) error {
	return m.run(ctx, m.triggerTimeout, "sudo", "shutdown", "-h", minutesArg(delay))
}

func (m *MacShutdown) Message(time.Duration) string {
	return ""
}

func (m *MacShutdown) GracePeriod(delay time.Duration) time.Duration {
	return time.Duration(wholeMinutes(delay)) * time.Minute
}

func (m *MacShutdown) Platform() Platform {
	return PlatformDarwin
}
