package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/michael-freling/power-e/internal/command"
	"github.com/michael-freling/power-e/internal/engine"
	"github.com/michael-freling/power-e/internal/schedule"
	"github.com/michael-freling/power-e/internal/store"
	"github.com/michael-freling/power-e/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "POWERE"
	clockLayout = "03:04 PM"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "powere",
		Short: "Shut this machine down at the same time every day",
		Long: `Power E enforces a daily bedtime for this machine. It issues the operating system
shutdown command at the configured time, offers a short window to cancel, and
reschedules itself for the next day.

Without flags it runs unattended using the saved time. Use --head to pick a
time interactively.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			head, _ := cmd.Flags().GetBool("head")
			settingsMode, _ := cmd.Flags().GetBool("settings")
			if head || settingsMode {
				return a.runAttended(cmd)
			}
			return a.runHeadless(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config-file", store.DefaultConfigFile, "file the daily shutdown time is saved to")
	rootCmd.PersistentFlags().String("log-file", store.DefaultActionLogFile, "CSV file scheduler actions are appended to")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.Flags().Bool("head", false, "run interactively and choose the shutdown time")
	rootCmd.Flags().Bool("settings", false, "same as --head")

	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <HH:MM> [AM|PM]",
		Short: "Save the daily shutdown time",
		Long:  `Validate and save the daily shutdown time without starting the scheduler, for example "powere set 10:30 PM".`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			tod, err := schedule.ParseClock(strings.Join(args, " "))
			if err != nil {
				return err
			}

			cfg := store.ConfigFromTimeOfDay(tod)
			a.configStore.Save(cfg)
			if !a.configStore.Exists() || a.configStore.Load() != cfg {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Yellow("Could not save to "+a.configStore.Path()))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Daily shutdown time set to %s\n", ui.Green("✓"), tod)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var entries int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved shutdown time and recent actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.printStatus(cmd.OutOrStdout(), time.Now(), entries)
		},
	}

	cmd.Flags().IntVar(&entries, "entries", 5, "number of recent action log rows to show")
	return cmd
}

// settings are the CLI options after flags and POWERE_* environment variables are merged
type settings struct {
	ConfigFile string
	LogFile    string
	Verbose    bool
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return settings{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	return settings{
		ConfigFile: v.GetString("config-file"),
		LogFile:    v.GetString("log-file"),
		Verbose:    v.GetBool("verbose"),
	}, nil
}

func newLogger(verbose bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

type app struct {
	settings    settings
	logger      *logrus.Logger
	configStore *store.ConfigStore
	actionLog   *store.ActionLog
	newInvoker  func() (command.ShutdownInvoker, error)
}

func newApp(cmd *cobra.Command) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	logger := newLogger(s.Verbose, cmd.ErrOrStderr())
	return &app{
		settings:    s,
		logger:      logger,
		configStore: store.NewConfigStore(s.ConfigFile, store.WithLogger(logger)),
		actionLog:   store.NewActionLog(s.LogFile, store.WithLogger(logger)),
		newInvoker: func() (command.ShutdownInvoker, error) {
			return command.NewShutdownInvoker(command.NewRunner(), "")
		},
	}, nil
}

func (a *app) newEngine(confirmer engine.Confirmer) (*engine.Engine, error) {
	invoker, err := a.newInvoker()
	if err != nil {
		return nil, fmt.Errorf("failed to create shutdown invoker: %w", err)
	}

	return engine.New(invoker, a.configStore, a.actionLog,
		engine.WithLogger(a.logger),
		engine.WithConfirmer(confirmer),
	), nil
}

// runHeadless schedules from the saved time and reports progress until interrupted
func (a *app) runHeadless(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	var confirmer engine.Confirmer = ui.Decline{}
	if ui.IsInteractive(os.Stdin) {
		confirmer = ui.NewTerminal(cmd.InOrStdin(), out)
	}
	return a.headless(ctx, out, confirmer, time.Second)
}

func (a *app) headless(ctx context.Context, out io.Writer, confirmer engine.Confirmer, every time.Duration) error {
	fmt.Fprintln(out, "Power E running in headless mode...")

	if !a.configStore.Exists() {
		fmt.Fprintln(out, "No configuration found. Please run with --head first to set up your shutdown time.")
		return nil
	}

	lock, err := store.AcquireInstanceLock(store.LockPathFor(a.settings.ConfigFile))
	if errors.Is(err, store.ErrAlreadyRunning) {
		fmt.Fprintln(out, ui.Yellow("Another Power E scheduler is already running."))
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			a.logger.WithError(err).Debug("Could not release instance lock")
		}
	}()

	tod, err := a.configStore.Load().TimeOfDay()
	if err != nil {
		return fmt.Errorf("failed to read saved shutdown time: %w", err)
	}

	eng, err := a.newEngine(confirmer)
	if err != nil {
		return err
	}
	if err := eng.Start(tod); err != nil {
		return fmt.Errorf("failed to start headless scheduler: %w", err)
	}
	fmt.Fprintf(out, "Daily shutdown scheduled for %s\n", eng.Snapshot().NextTrigger.Format(clockLayout))

	reportHeadless(ctx, out, eng, every)

	fmt.Fprintln(out, "\nShutting down scheduler...")
	eng.Stop()
	return nil
}

// reportHeadless prints status changes and the countdown on its report cadence until ctx ends
func reportHeadless(ctx context.Context, out io.Writer, eng *engine.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	lastMessage := eng.Snapshot().Message
	lastCountdown := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap := eng.Snapshot()
		if snap.Message != lastMessage {
			lastMessage = snap.Message
			if snap.LastError != nil {
				fmt.Fprintln(out, ui.Red(snap.Message))
			} else {
				fmt.Fprintln(out, snap.Message)
			}
			continue
		}

		countdown := ui.FormatCountdown(snap.Remaining)
		if countdown != lastCountdown && ui.ShouldReport(snap.Remaining) {
			lastCountdown = countdown
			fmt.Fprintf(out, "Next shutdown in: %s\n", countdown)
		}
	}
}

// runAttended asks for the time, confirms, and shows a live countdown until interrupted
func (a *app) runAttended(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	term := ui.NewTerminal(cmd.InOrStdin(), out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, ui.Bold("Power E ⚡"))
	tod, err := askTimeOfDay(ctx, term, out, a.configStore.Load())
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	ok, err := term.Ask(ctx, fmt.Sprintf("Schedule daily shutdown at %s?", tod))
	if err != nil || !ok {
		fmt.Fprintln(out, "Nothing scheduled.")
		return nil
	}

	eng, err := a.newEngine(term)
	if err != nil {
		return err
	}
	if err := eng.Start(tod); err != nil {
		return err
	}
	fmt.Fprintln(out, ui.Green("✓ ")+eng.Snapshot().Message)
	fmt.Fprintln(out, ui.Cyan("Press Ctrl+C to stop the scheduler."))

	displayCountdown(ctx, out, eng, term, time.Second)

	eng.Stop()
	fmt.Fprintln(out, ui.ClearLine+"Scheduler stopped")
	return nil
}

func askTimeOfDay(ctx context.Context, term *ui.Terminal, out io.Writer, saved store.Config) (schedule.TimeOfDay, error) {
	prompt := fmt.Sprintf("Shutdown time [%s:%s %s]: ", saved.Hour, saved.Minute, saved.AMPM)
	for {
		line, err := term.ReadLine(ctx, prompt)
		if err != nil {
			return schedule.TimeOfDay{}, fmt.Errorf("failed to read shutdown time: %w", err)
		}

		var tod schedule.TimeOfDay
		if line == "" {
			tod, err = saved.TimeOfDay()
		} else {
			tod, err = schedule.ParseClock(line)
		}
		if err == nil {
			return tod, nil
		}
		fmt.Fprintln(out, ui.Red(err.Error()))
	}
}

// displayCountdown redraws one status line every tick. Redraws pause while a prompt is open.
func displayCountdown(ctx context.Context, out io.Writer, eng *engine.Engine, term *ui.Terminal, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	lastMessage := eng.Snapshot().Message
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if term.Prompting() {
			continue
		}

		snap := eng.Snapshot()
		if snap.Message != lastMessage {
			lastMessage = snap.Message
			line := ui.Green("✓ " + snap.Message)
			if snap.LastError != nil {
				line = ui.Red("✗ " + snap.Message)
			}
			fmt.Fprintln(out, ui.ClearLine+line)
		}
		fmt.Fprintf(out, "%sNext shutdown: %s", ui.ClearLine, ui.FormatCountdown(snap.Remaining))
	}
}

func (a *app) printStatus(out io.Writer, now time.Time, entries int) error {
	cfg := a.configStore.Load()
	tod, err := cfg.TimeOfDay()
	if err != nil {
		return err
	}

	if a.configStore.Exists() {
		fmt.Fprintf(out, "Daily shutdown time: %s\n", tod)
	} else {
		fmt.Fprintf(out, "Daily shutdown time: %s %s\n", tod, ui.Yellow("(default, not saved)"))
	}
	next := schedule.NextTrigger(tod, now)
	fmt.Fprintf(out, "Next shutdown: %s (in %s)\n", next.Format("2006-01-02 03:04 PM"), ui.FormatCountdown(next.Sub(now)))

	if entries <= 0 {
		return nil
	}
	records, err := a.actionLog.Entries()
	if err != nil {
		return fmt.Errorf("failed to read action log: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No actions recorded.")
		return nil
	}
	if len(records) > entries {
		records = records[len(records)-entries:]
	}

	fmt.Fprintln(out, "\nTIMESTAMP\tACTION\tSCHEDULED")
	for _, r := range records {
		fmt.Fprintf(out, "%s\t%s\t%s\n", r.Timestamp, r.Action, r.ScheduledTime)
	}
	return nil
}
