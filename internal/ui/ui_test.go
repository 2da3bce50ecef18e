package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColors(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) string
		input string
		want  string
	}{
		{name: "green", fn: Green, input: "ok", want: "\033[32mok\033[0m"},
		{name: "red", fn: Red, input: "fail", want: "\033[31mfail\033[0m"},
		{name: "yellow", fn: Yellow, input: "warn", want: "\033[33mwarn\033[0m"},
		{name: "cyan", fn: Cyan, input: "info", want: "\033[36minfo\033[0m"},
		{name: "bold", fn: Bold, input: "title", want: "\033[1mtitle\033[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.input))
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "00:00:00"},
		{d: -5 * time.Second, want: "00:00:00"},
		{d: 59*time.Second + 900*time.Millisecond, want: "00:00:59"},
		{d: 10 * time.Hour, want: "10:00:00"},
		{d: 23*time.Hour + 59*time.Minute + 59*time.Second, want: "23:59:59"},
		{d: 30 * time.Hour, want: "30:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCountdown(tt.d))
		})
	}
}

func TestShouldReport(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      bool
	}{
		{name: "ten minute mark", remaining: 2*time.Hour + 20*time.Minute, want: true},
		{name: "top of the hour", remaining: 3 * time.Hour, want: true},
		{name: "off the mark", remaining: 2*time.Hour + 21*time.Minute, want: false},
		{name: "mark with seconds", remaining: 20*time.Minute + time.Second, want: false},
		{name: "last five minutes", remaining: 4*time.Minute + 17*time.Second, want: true},
		{name: "exactly five minutes", remaining: 5 * time.Minute, want: true},
		{name: "just over five minutes", remaining: 5*time.Minute + time.Second, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReport(tt.remaining))
		})
	}
}

func TestTerminal_Ask(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr error
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes in caps", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty answer is no", input: "\n", want: false},
		{name: "closed input", input: "", wantErr: ErrInputClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out)

			got, err := term.Ask(context.Background(), "Schedule?")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Schedule? [y/N]: ")
		})
	}
}

// pending reports how many read lines have not been handed to a prompt yet
func (t *Terminal) pending() int {
	t.queueMu.Lock()
	defer t.queueMu.Unlock()
	return len(t.queue)
}

func answerWhenPrompted(term *Terminal, writer io.Writer, line string) {
	go func() {
		for !term.Prompting() {
			time.Sleep(time.Millisecond)
		}
		_, _ = writer.Write([]byte(line))
	}()
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "yes", answer: "y\n", want: true},
		{name: "full yes in caps", answer: "YES\n", want: true},
		{name: "no", answer: "n\n", want: false},
		{name: "empty answer is no", answer: "\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, writer := io.Pipe()
			defer writer.Close()
			var out bytes.Buffer
			term := NewTerminal(reader, &out)

			answerWhenPrompted(term, writer, tt.answer)
			got, err := term.Confirm(context.Background(), "Cancel?")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal_ConfirmClosedInput(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), io.Discard)

	got, err := term.Confirm(context.Background(), "Cancel?")

	assert.False(t, got)
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestTerminal_ConfirmIgnoresEarlierInput(t *testing.T) {
	tests := []struct {
		name  string
		stale string
	}{
		{name: "yes typed after a timed out prompt", stale: "y\n"},
		{name: "enter pressed between prompts", stale: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, writer := io.Pipe()
			defer writer.Close()
			term := NewTerminal(reader, io.Discard)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			got, err := term.Confirm(ctx, "Cancel?")
			assert.False(t, got)
			assert.ErrorIs(t, err, context.DeadlineExceeded)

			_, err = writer.Write([]byte(tt.stale))
			require.NoError(t, err)
			require.Eventually(t, func() bool { return term.pending() == 1 }, time.Second, time.Millisecond)

			// the line typed while no question was open must not answer this one
			next, cancelNext := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancelNext()
			got, err = term.Confirm(next, "Cancel?")
			assert.False(t, got)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Zero(t, term.pending())

			answerWhenPrompted(term, writer, "yes\n")
			got, err = term.Confirm(context.Background(), "Cancel?")
			require.NoError(t, err)
			assert.True(t, got)
		})
	}
}

func TestTerminal_ReadLine(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("  10:30 PM  \nsecond\n"), &out)

	first, err := term.ReadLine(context.Background(), "Time: ")
	require.NoError(t, err)
	assert.Equal(t, "10:30 PM", first)

	second, err := term.ReadLine(context.Background(), "Again: ")
	require.NoError(t, err)
	assert.Equal(t, "second", second)
	assert.Equal(t, "Time: Again: ", out.String())
}

func TestDecline_Confirm(t *testing.T) {
	got, err := Decline{}.Confirm(context.Background(), "Cancel?")
	require.NoError(t, err)
	assert.False(t, got)
}
