package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`
	Study   StudyConfig   `mapstructure:"study" validate:"required"`
}

// StorageConfig contains all persistence-related configuration settings.
type StorageConfig struct {
	// Dir is the data directory holding the SQLite database, deck archives,
	// and their backups.
	Dir string `mapstructure:"dir" validate:"required"`

	// AutosaveInterval is how often dirty review state is flushed to the
	// database by the background saver.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"required,gte=5s,lte=1h"`

	// BackupCount is how many timestamped backups of a deck archive to keep.
	BackupCount int `mapstructure:"backup_count" validate:"required,gte=1,lte=100"`
}

// LoggingConfig contains all logging-related configuration settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// File is an optional log file path. When empty, logs go to stderr so
	// they stay out of command output.
	File string `mapstructure:"file"`
}

// StudyConfig contains study session settings.
type StudyConfig struct {
	// SessionLimit is the maximum number of due cards drawn into a single
	// study session.
	SessionLimit int `mapstructure:"session_limit" validate:"required,gt=0,lte=500"`
}
