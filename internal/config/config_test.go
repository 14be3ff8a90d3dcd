package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInit(t *testing.T) {
	viper.Reset()
	Init()

	assert.Equal(t, 1, viper.GetInt("version"))
	assert.Equal(t, backup.DefaultRetentionCount, viper.GetInt("retention"))
	assert.False(t, viper.GetBool("verify.rehash"))
	assert.Equal(t, backup.DefaultBackupDir(), viper.GetString("backup_dir"))
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()
	Init()

	path := writeConfig(t, "backup_dir: /srv/backups\nretention: 9\nverify:\n  rehash: true\ndefault_browser: floorp\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/backups", cfg.BackupDir)
	assert.Equal(t, 9, cfg.Retention)
	assert.True(t, cfg.Verify.Rehash)
	assert.Equal(t, "floorp", cfg.DefaultBrowser)
	assert.Equal(t, 1, cfg.Version, "unset keys keep defaults")
	assert.Equal(t, path, Used())
}

func TestLoad_ExpandsHome(t *testing.T) {
	viper.Reset()
	Init()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Load(writeConfig(t, "backup_dir: ~/archives\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "archives"), cfg.BackupDir)
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("FLOORPER_RETENTION", "2")
	t.Setenv("FLOORPER_VERIFY_REHASH", "true")
	Init()

	cfg, err := Load(writeConfig(t, "retention: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Retention)
	assert.True(t, cfg.Verify.Rehash)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "version too low",
			content: "version: 0\n",
			wantErr: "validating config: version must be >= 1",
		},
		{
			name:    "negative retention",
			content: "retention: -1\n",
			wantErr: "validating config: retention must be >= 0",
		},
		{
			name:    "unknown browser",
			content: "default_browser: netscape\n",
			wantErr: "validating config: invalid browser: netscape",
		},
		{
			name:    "malformed yaml",
			content: "retention: [\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			Init()

			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(Defaults()))
	assert.Len(t, Validate(nil), 1)

	cfg := Defaults()
	cfg.BackupDir = ""
	cfg.Version = 0
	errs := Validate(cfg)
	require.Len(t, errs, 2)

	var pathErr *PathError
	assert.True(t, errors.As(errs[1], &pathErr))
	assert.Equal(t, "backup_dir", pathErr.Field)
	assert.True(t, errors.Is(errs[1], ErrInvalidPath))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floorper", "config.yaml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, *Defaults(), got)

	err = WriteDefault(path, false)
	assert.True(t, errors.Is(err, ErrConfigExists), "got %v", err)

	assert.NoError(t, WriteDefault(path, true))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, "floorper", filepath.Base(filepath.Dir(DefaultPath())))
}
