package store

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/michael-freling/power-e/internal/schedule"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is where the last committed shutdown time is kept
	DefaultConfigFile = "scheduler_config.json"

	keyHour   = "hour"
	keyMinute = "minute"
	keyAMPM   = "ampm"
)

var (
	ErrConfigLoadFailed = errors.New("failed to load config")
	ErrConfigSaveFailed = errors.New("failed to save config")
)

// Config is the persisted shutdown time in its on-disk string form
type Config struct {
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	AMPM   string `json:"ampm"`
}

// DefaultConfig is used whenever nothing usable is on disk: 06:00 PM
func DefaultConfig() Config {
	return Config{Hour: "06", Minute: "00", AMPM: string(schedule.PM)}
}

// ConfigFromTimeOfDay converts a validated time of day to its persisted form
func ConfigFromTimeOfDay(t schedule.TimeOfDay) Config {
	return Config{
		Hour:   fmt.Sprintf("%02d", t.Hour),
		Minute: fmt.Sprintf("%02d", t.Minute),
		AMPM:   string(t.Meridiem),
	}
}

// TimeOfDay parses the persisted strings
func (c Config) TimeOfDay() (schedule.TimeOfDay, error) {
	return schedule.ParseTimeOfDay(c.Hour, c.Minute, c.AMPM)
}

// ConfigStore reads and writes Config as a small JSON record.
// Neither Load nor Save ever fail the caller; problems go to the logger.
type ConfigStore struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger
}

// StoreOption customizes ConfigStore and ActionLog
type StoreOption func(*storeOptions)

type storeOptions struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// WithFs replaces the OS filesystem
func WithFs(fs afero.Fs) StoreOption {
	return func(o *storeOptions) {
		o.fs = fs
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger logrus.FieldLogger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []StoreOption) storeOptions {
	o := storeOptions{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.logger = discard
	}
	return o
}

// NewConfigStore creates a store for the record at path
func NewConfigStore(path string, opts ...StoreOption) *ConfigStore {
	o := applyOptions(opts)
	return &ConfigStore{
		fs:     o.fs,
		path:   path,
		logger: o.logger.WithField("config_file", path),
	}
}

// Path returns the location of the record
func (s *ConfigStore) Path() string {
	return s.path
}

// Exists reports whether a record has ever been saved
func (s *ConfigStore) Exists() bool {
	ok, err := afero.Exists(s.fs, s.path)
	return err == nil && ok
}

// Load returns the persisted config, or DefaultConfig when the record is
// missing, unreadable, malformed or holds an invalid time. Individual missing
// keys fall back to their default.
func (s *ConfigStore) Load() Config {
	defaults := DefaultConfig()

	v := s.newViper()
	v.SetDefault(keyHour, defaults.Hour)
	v.SetDefault(keyMinute, defaults.Minute)
	v.SetDefault(keyAMPM, defaults.AMPM)

	if err := v.ReadInConfig(); err != nil {
		s.logger.WithError(fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)).Debug("Using default shutdown time")
		return defaults
	}

	loaded := Config{
		Hour:   v.GetString(keyHour),
		Minute: v.GetString(keyMinute),
		AMPM:   v.GetString(keyAMPM),
	}
	tod, err := loaded.TimeOfDay()
	if err != nil {
		s.logger.WithError(fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)).Warn("Ignoring invalid saved shutdown time")
		return defaults
	}

	return ConfigFromTimeOfDay(tod)
}

// Save overwrites the record. Errors are logged and dropped.
func (s *ConfigStore) Save(cfg Config) {
	if err := s.save(cfg); err != nil {
		s.logger.WithError(fmt.Errorf("%w: %w", ErrConfigSaveFailed, err)).Warn("Could not persist shutdown time")
	}
}

func (s *ConfigStore) save(cfg Config) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v := s.newViper()
	v.Set(keyHour, cfg.Hour)
	v.Set(keyMinute, cfg.Minute)
	v.Set(keyAMPM, cfg.AMPM)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (s *ConfigStore) newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	return v
}
