package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FLOORPER_DEBUG", "")
			verbosity = tt.verbosity
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel), "expected level %v to be enabled", tt.wantLevel)
			if tt.wantLevel > logging.LevelTrace {
				below := tt.wantLevel - 4
				assert.False(t, logger.Enabled(t.Context(), below), "expected level %v to be disabled", below)
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"FLOORPER_DEBUG=1", "1", slog.LevelDebug},
		{"FLOORPER_DEBUG=true", "true", slog.LevelDebug},
		{"FLOORPER_DEBUG=2", "2", logging.LevelTrace},
		{"FLOORPER_DEBUG=0", "0", slog.LevelWarn},
		{"FLOORPER_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("FLOORPER_DEBUG", tt.envVal)

			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			if tt.wantLevel == slog.LevelDebug {
				assert.False(t, logger.Enabled(t.Context(), logging.LevelTrace))
			}
			if tt.wantLevel == slog.LevelWarn {
				assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
			}
		})
	}
}

func TestSetupLogging_QuietAndVerboseConflict(t *testing.T) {
	origVerbosity, origQuiet := verbosity, quiet
	defer func() { verbosity, quiet = origVerbosity, origQuiet }()

	verbosity, quiet = 1, true
	err := setupLogging(rootCmd)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, ExitCode(err))
}

func TestSetupLogging_StoresLoggerInContext(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()
	verbosity = 2

	require.NoError(t, setupLogging(rootCmd))
	assert.Same(t, slog.Default(), logging.FromContext(rootCmd.Context()))
}

func TestSetupLogging_LogFile(t *testing.T) {
	origVerbosity, origFile := verbosity, logFile
	defer func() {
		verbosity, logFile = origVerbosity, origFile
		_ = closeLog()
	}()
	t.Setenv("FLOORPER_DEBUG", "")

	verbosity = 1
	logFile = filepath.Join(t.TempDir(), "floorper.log")
	require.NoError(t, setupLogging(rootCmd))

	slog.Info("listing backups", "count", 2)
	require.NoError(t, closeLog())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"listing backups"`)
}

func TestSetupLogging_LogFileOpenError(t *testing.T) {
	origFile := logFile
	defer func() { logFile = origFile }()

	logFile = filepath.Join(t.TempDir(), "missing", "floorper.log")
	err := setupLogging(rootCmd)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, errors.ExitSuccess},
		{"plain error", errors.New("boom"), errors.ExitUser},
		{"system error", errors.NewSystemError(errors.New("disk"), ""), errors.ExitSystem},
		{"wrapped exit error", errors.Wrap(errors.NewExitError(errDoctorErrors, errors.ExitSystem), "executing root command"), errors.ExitSystem},
		{"doctor warnings", errors.NewExitError(errDoctorWarnings, errors.ExitUser), errors.ExitUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCheckConfig(t *testing.T) {
	orig := configLoadErr
	defer func() { configLoadErr = orig }()

	configLoadErr = nil
	assert.NoError(t, checkConfig(versionCmd))

	configLoadErr = errors.Mark(errors.New("bad yaml"), errors.ErrInvalidConfig)
	assert.NoError(t, checkConfig(doctorCmd))
	assert.NoError(t, checkConfig(configInitCmd))

	err := checkConfig(browsersCmd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.Equal(t, errors.ExitUser, ExitCode(err))
}
