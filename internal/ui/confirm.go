package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
)

// ErrInputClosed is returned once the input stream has ended
var ErrInputClosed = errors.New("input closed")

// Terminal asks questions on a line-oriented terminal.
// One goroutine reads the input so an abandoned prompt never steals the next answer.
type Terminal struct {
	out io.Writer
	in  io.Reader

	once      sync.Once
	mu        sync.Mutex
	prompting atomic.Bool

	queueMu sync.Mutex
	queue   []typedLine
	closed  bool
	notify  chan struct{}
}

type typedLine struct {
	text string
	at   time.Time
}

// NewTerminal creates a Terminal reading answers from in and writing prompts to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, notify: make(chan struct{}, 1)}
}

// IsInteractive reports whether f is attached to a terminal
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) start() {
	t.once.Do(func() {
		go func() {
			scanner := bufio.NewScanner(t.in)
			for scanner.Scan() {
				t.queueMu.Lock()
				t.queue = append(t.queue, typedLine{text: scanner.Text(), at: time.Now()})
				t.queueMu.Unlock()
				t.wake()
			}

			t.queueMu.Lock()
			t.closed = true
			t.queueMu.Unlock()
			t.wake()
		}()
	})
}

func (t *Terminal) wake() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// next returns the first queued line read at or after since; older lines are dropped
func (t *Terminal) next(ctx context.Context, since time.Time) (string, error) {
	for {
		t.queueMu.Lock()
		for len(t.queue) > 0 {
			line := t.queue[0]
			t.queue = t.queue[1:]
			if line.at.Before(since) {
				continue
			}
			t.queueMu.Unlock()
			return line.text, nil
		}
		closed := t.closed
		t.queueMu.Unlock()

		if closed {
			return "", ErrInputClosed
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.notify:
		}
	}
}

func (t *Terminal) ask(ctx context.Context, prompt string, since time.Time) (string, error) {
	t.start()

	t.prompting.Store(true)
	defer t.prompting.Store(false)

	fmt.Fprint(t.out, prompt)
	line, err := t.next(ctx, since)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(t.out)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadLine prints prompt and waits for one line or ctx expiry.
// Lines typed ahead of the prompt are answers too.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ask(ctx, prompt, time.Time{})
}

// Prompting reports whether a prompt is waiting for an answer
func (t *Terminal) Prompting() bool {
	return t.prompting.Load()
}

// Ask asks message with a [y/N] suffix and accepts typed-ahead answers.
// Anything but y or yes is a no.
func (t *Terminal) Ask(ctx context.Context, message string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.yesNo(ctx, message, time.Time{})
}

// Confirm is Ask for questions that must be answered after they are shown:
// lines typed before the prompt appears are discarded.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.yesNo(ctx, message, time.Now())
}

func (t *Terminal) yesNo(ctx context.Context, message string, since time.Time) (bool, error) {
	answer, err := t.ask(ctx, Bold(message+" [y/N]: "), since)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Decline answers no to every question without asking. Used when nobody is at the terminal.
type Decline struct{}

func (Decline) Confirm(context.Context, string) (bool, error) {
	return false, nil
}
