package store

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLog_Append(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := NewActionLog("logs/shutdown_log.csv", WithFs(fs))

	log.Append(LogEntry{
		Timestamp:     time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local),
		Action:        "Daily Shutdown Scheduled",
		ScheduledTime: time.Date(2024, 1, 1, 18, 0, 0, 0, time.Local),
	})
	log.Append(LogEntry{
		Timestamp: time.Date(2024, 1, 1, 9, 30, 5, 0, time.Local),
		Action:    "Daily shutdown schedule stopped",
	})

	data, err := afero.ReadFile(fs, "logs/shutdown_log.csv")
	require.NoError(t, err)
	want := "Timestamp,Action,Scheduled Time\n" +
		"2024-01-01 08:00:00,Daily Shutdown Scheduled,06:00 PM\n" +
		"2024-01-01 09:30:05,Daily shutdown schedule stopped,N/A\n"
	assert.Equal(t, want, string(data))
}

func TestActionLog_AppendToExistingFileSkipsHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "shutdown_log.csv", []byte("Timestamp,Action,Scheduled Time\n"), 0644))

	NewActionLog("shutdown_log.csv", WithFs(fs)).Append(LogEntry{
		Timestamp:     time.Date(2024, 1, 2, 18, 0, 0, 0, time.Local),
		Action:        "Shutdown command executed",
		ScheduledTime: time.Date(2024, 1, 2, 18, 0, 0, 0, time.Local),
	})

	data, err := afero.ReadFile(fs, "shutdown_log.csv")
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Action,Scheduled Time\n2024-01-02 18:00:00,Shutdown command executed,06:00 PM\n", string(data))
}

func TestActionLog_Entries(t *testing.T) {
	tests := []struct {
		name    string
		entries []LogEntry
		want    []Record
	}{
		{
			name: "missing log has no entries",
			want: nil,
		},
		{
			name: "reads rows after header",
			entries: []LogEntry{
				{Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local), Action: "Daily Shutdown Scheduled", ScheduledTime: time.Date(2024, 1, 1, 0, 15, 0, 0, time.Local)},
				{Timestamp: time.Date(2024, 1, 1, 8, 1, 0, 0, time.Local), Action: "Shutdown failed, retrying", ScheduledTime: time.Date(2024, 1, 1, 12, 15, 0, 0, time.Local)},
			},
			want: []Record{
				{Timestamp: "2024-01-01 08:00:00", Action: "Daily Shutdown Scheduled", ScheduledTime: "12:15 AM"},
				{Timestamp: "2024-01-01 08:01:00", Action: "Shutdown failed, retrying", ScheduledTime: "12:15 PM"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewActionLog("shutdown_log.csv", WithFs(afero.NewMemMapFs()))
			for _, e := range tt.entries {
				log.Append(e)
			}

			got, err := log.Entries()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionLog_WriteFailureIsSwallowed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	log := NewActionLog("shutdown_log.csv", WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())), WithLogger(logger))

	assert.NotPanics(t, func() {
		log.Append(LogEntry{Timestamp: time.Now(), Action: "Daily Shutdown Scheduled"})
	})

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Daily Shutdown Scheduled", hook.LastEntry().Data["action"])
	err, ok := hook.LastEntry().Data[logrus.ErrorKey].(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrActionLogWrite)
}
