package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/config"
	"github.com/floorper/floorper/internal/doctor"
	"github.com/floorper/floorper/internal/errors"
)

// staticCheck is a doctor check with a fixed result.
type staticCheck struct {
	name   string
	status doctor.Severity
}

func (c staticCheck) Name() string     { return c.name }
func (c staticCheck) Category() string { return "test" }
func (c staticCheck) Run() *doctor.CheckResult {
	return &doctor.CheckResult{Name: c.name, Category: "test", Status: c.status, Message: c.status.String(), FixHint: "do something"}
}

func resetDoctorFlags(t *testing.T) {
	t.Helper()
	j, q, v, f := doctorJSON, doctorQuiet, doctorVerbose, doctorFix
	t.Cleanup(func() { doctorJSON, doctorQuiet, doctorVerbose, doctorFix = j, q, v, f })
	doctorJSON, doctorQuiet, doctorVerbose, doctorFix = false, false, false, false
}

func TestRunDoctor_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		statuses []doctor.Severity
		want     int
	}{
		{"all pass", []doctor.Severity{doctor.SeverityPass, doctor.SeverityInfo}, errors.ExitSuccess},
		{"warning", []doctor.Severity{doctor.SeverityPass, doctor.SeverityWarning}, errors.ExitUser},
		{"error beats warning", []doctor.Severity{doctor.SeverityWarning, doctor.SeverityError}, errors.ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetDoctorFlags(t)
			runner := doctor.NewRunner()
			for i, s := range tt.statuses {
				runner.AddCheck(staticCheck{name: string(rune('a' + i)), status: s})
			}

			err := runDoctor(&bytes.Buffer{}, runner)
			assert.Equal(t, tt.want, ExitCode(err))
		})
	}
}

func TestRunDoctor_TextHidesPassingChecks(t *testing.T) {
	resetDoctorFlags(t)
	runner := doctor.NewRunner()
	runner.AddCheck(staticCheck{name: "fine", status: doctor.SeverityPass})
	runner.AddCheck(staticCheck{name: "shaky", status: doctor.SeverityWarning})

	var buf bytes.Buffer
	err := runDoctor(&buf, runner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDoctorWarnings))

	out := buf.String()
	assert.NotContains(t, out, "fine")
	assert.Contains(t, out, "⚠ [test] shaky: warning")
	assert.Contains(t, out, "hint: do something")
	assert.Contains(t, out, "Summary: 1 passed, 0 info, 1 warnings, 0 errors")

	doctorVerbose = true
	buf.Reset()
	_ = runDoctor(&buf, runner)
	assert.Contains(t, buf.String(), "✓ [test] fine: pass")
}

func TestRunDoctor_JSONAndQuiet(t *testing.T) {
	resetDoctorFlags(t)
	runner := doctor.NewRunner()
	runner.AddCheck(staticCheck{name: "fine", status: doctor.SeverityPass})

	doctorJSON = true
	var buf bytes.Buffer
	require.NoError(t, runDoctor(&buf, runner))
	var report map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	results := report["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "pass", results[0].(map[string]any)["status"])

	doctorJSON, doctorQuiet = false, true
	buf.Reset()
	require.NoError(t, runDoctor(&buf, runner))
	assert.Empty(t, buf.String())
}

func TestRunDoctor_FixCreatesBackupDir(t *testing.T) {
	resetDoctorFlags(t)
	dir := filepath.Join(t.TempDir(), "backups")
	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewStoreCheck(dir))

	doctorFix = true
	var buf bytes.Buffer
	require.NoError(t, runDoctor(&buf, runner))
	assert.DirExists(t, dir)
	assert.Contains(t, buf.String(), "fixed "+dir)
}

func TestValidateDoctorFlags(t *testing.T) {
	resetDoctorFlags(t)
	assert.NoError(t, validateDoctorFlags(nil, nil))

	doctorJSON, doctorVerbose = true, true
	assert.Error(t, validateDoctorFlags(nil, nil))
}

func TestRunBrowsers(t *testing.T) {
	home := t.TempDir()
	ff := filepath.Join(home, ".mozilla", "firefox", "ab12.default-release")
	require.NoError(t, os.MkdirAll(ff, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ff, "times.json"), nil, 0o644))
	chrome := filepath.Join(home, ".config", "google-chrome", "Profile 2")
	require.NoError(t, os.MkdirAll(chrome, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(chrome, "Preferences"), nil, 0o644))

	loc := browser.NewLocator(browser.WithHome(home), browser.WithGOOS("linux"))

	var buf bytes.Buffer
	require.NoError(t, runBrowsers(&buf, loc, false, false))
	out := buf.String()
	assert.Contains(t, out, "default-release")
	assert.Contains(t, out, "Profile 2")
	assert.NotContains(t, out, "vivaldi")

	buf.Reset()
	require.NoError(t, runBrowsers(&buf, loc, true, true))
	var entries []browserEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Len(t, entries, len(browser.Known()))
	for _, e := range entries {
		switch e.ID {
		case "firefox":
			assert.True(t, e.Installed)
			require.Len(t, e.Profiles, 1)
			assert.Equal(t, "default-release", e.Profiles[0].Name)
		case "chrome":
			assert.True(t, e.Installed)
		default:
			assert.False(t, e.Installed, e.ID)
			assert.Empty(t, e.Profiles)
		}
	}
}

func TestRunBrowsers_NoneFound(t *testing.T) {
	loc := browser.NewLocator(browser.WithHome(t.TempDir()), browser.WithGOOS("linux"))

	var buf bytes.Buffer
	require.NoError(t, runBrowsers(&buf, loc, false, false))
	assert.Contains(t, buf.String(), "No supported browsers found.")

	buf.Reset()
	require.NoError(t, runBrowsers(&buf, loc, false, true))
	assert.JSONEq(t, "[]", buf.String())
}

func TestRunConfigShow(t *testing.T) {
	cfg := &config.Config{Version: 1, BackupDir: "/data/backups", Retention: 3, DefaultBrowser: "floorp"}

	var buf bytes.Buffer
	require.NoError(t, runConfigShow(&buf, cfg, "yaml"))
	assert.Contains(t, buf.String(), "backup_dir: /data/backups")
	assert.Contains(t, buf.String(), "default_browser: floorp")

	buf.Reset()
	require.NoError(t, runConfigShow(&buf, cfg, "json"))
	var decoded config.Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *cfg, decoded)

	buf.Reset()
	require.NoError(t, runConfigShow(&buf, cfg, "toml"))
	assert.Contains(t, buf.String(), "retention = 3")
	assert.Contains(t, buf.String(), "[verify]")

	assert.Error(t, runConfigShow(&buf, cfg, "ini"))
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var buf bytes.Buffer
	require.NoError(t, runConfigInit(&buf, path, false))
	assert.FileExists(t, path)
	assert.Contains(t, buf.String(), "Wrote "+path)

	err := runConfigInit(&buf, path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigExists))
	assert.Equal(t, errors.ExitUser, ExitCode(err))

	assert.NoError(t, runConfigInit(&buf, path, true))
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "floorper version")
	assert.Contains(t, buf.String(), "commit:")
}

func TestGenDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, genDocs(dir, "markdown"))

	data, err := os.ReadFile(filepath.Join(dir, "floorper_backup_restore.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `title: "floorper backup restore"`)
	assert.Contains(t, string(data), "--merge")

	manDir := t.TempDir()
	require.NoError(t, genDocs(manDir, "man"))
	assert.FileExists(t, filepath.Join(manDir, "floorper-backup-verify.1"))

	assert.Error(t, genDocs(t.TempDir(), "pdf"))
}
