package command

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	tests := []struct {
		name       string
		script     string
		wantStdout string
		wantStderr string
		wantErr    bool
	}{
		{
			name:       "captures trimmed stdout",
			script:     "echo '  hello  '",
			wantStdout: "hello",
		},
		{
			name:       "captures stderr and exit status",
			script:     "echo oops >&2; exit 3",
			wantStderr: "oops",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := NewRunner().Run(context.Background(), "sh", "-c", tt.script)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStdout, stdout)
			assert.Equal(t, tt.wantStderr, stderr)
		})
	}
}
