package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	// Set new environment variables
	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	// Return cleanup function
	return func() {
		// Restore original environment
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// clearEnv clears every MNEMO_ variable the tests care about so defaults
// apply regardless of the outer environment.
func clearEnv(t *testing.T) func() {
	return setupEnv(t, map[string]string{
		"MNEMO_STORAGE_DIR":               "",
		"MNEMO_STORAGE_AUTOSAVE_INTERVAL": "",
		"MNEMO_STORAGE_BACKUP_COUNT":      "",
		"MNEMO_LOGGING_LEVEL":             "",
		"MNEMO_LOGGING_FILE":              "",
		"MNEMO_STUDY_SESSION_LIMIT":       "",
	})
}

// TestLoadDefaults verifies that the Load function sets the expected default
// values when no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	cleanup := clearEnv(t)
	defer cleanup()

	// Load configuration
	cfg, err := Load()

	// Verify
	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.NotEmpty(t, cfg.Storage.Dir, "Default storage dir should be set")
	assert.Equal(t, 60*time.Second, cfg.Storage.AutosaveInterval, "Default autosave interval should be 60s")
	assert.Equal(t, 10, cfg.Storage.BackupCount, "Default backup count should be 10")
	assert.Equal(t, "info", cfg.Logging.Level, "Default log level should be 'info'")
	assert.Empty(t, cfg.Logging.File, "Default log file should be empty (stderr)")
	assert.Equal(t, 20, cfg.Study.SessionLimit, "Default session limit should be 20")
}

// TestLoadFromEnv verifies that the Load function correctly reads values from
// environment variables.
func TestLoadFromEnv(t *testing.T) {
	// Setup environment
	cleanup := setupEnv(t, map[string]string{
		"MNEMO_STORAGE_DIR":               "/tmp/mnemo-test",
		"MNEMO_STORAGE_AUTOSAVE_INTERVAL": "30s",
		"MNEMO_STORAGE_BACKUP_COUNT":      "5",
		"MNEMO_LOGGING_LEVEL":             "debug",
		"MNEMO_LOGGING_FILE":              "/tmp/mnemo-test/mnemo.log",
		"MNEMO_STUDY_SESSION_LIMIT":       "50",
	})
	defer cleanup()

	// Load configuration
	cfg, err := Load()

	// Verify
	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, "/tmp/mnemo-test", cfg.Storage.Dir, "Storage dir should be loaded from environment variables")
	assert.Equal(t, 30*time.Second, cfg.Storage.AutosaveInterval, "Autosave interval should be loaded from environment variables")
	assert.Equal(t, 5, cfg.Storage.BackupCount, "Backup count should be loaded from environment variables")
	assert.Equal(t, "debug", cfg.Logging.Level, "Log level should be loaded from environment variables")
	assert.Equal(t, "/tmp/mnemo-test/mnemo.log", cfg.Logging.File, "Log file should be loaded from environment variables")
	assert.Equal(t, 50, cfg.Study.SessionLimit, "Session limit should be loaded from environment variables")
}

// TestLoadValidationErrors verifies that the Load function correctly
// validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	// Test cases with invalid values
	testCases := []struct {
		name           string
		envVars        map[string]string
		errorSubstring string
	}{
		{
			name: "Invalid log level",
			envVars: map[string]string{
				"MNEMO_LOGGING_LEVEL": "verbose",
			},
			errorSubstring: "validation failed",
		},
		{
			name: "Autosave interval below the minimum",
			envVars: map[string]string{
				"MNEMO_STORAGE_AUTOSAVE_INTERVAL": "2s",
			},
			errorSubstring: "validation failed",
		},
		{
			name: "Zero backup count",
			envVars: map[string]string{
				"MNEMO_STORAGE_BACKUP_COUNT": "0",
			},
			errorSubstring: "validation failed",
		},
		{
			name: "Session limit above the maximum",
			envVars: map[string]string{
				"MNEMO_STUDY_SESSION_LIMIT": "1000",
			},
			errorSubstring: "validation failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clear the environment, then apply the invalid values
			cleanupAll := clearEnv(t)
			defer cleanupAll()
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			// Load configuration
			cfg, err := Load()

			// Verify
			assert.Error(t, err, "Load() should return an error with invalid configuration")
			if err != nil {
				assert.Contains(t, err.Error(), tc.errorSubstring, "Error message should contain expected substring")
			}
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
