package doctor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_AddCheck(t *testing.T) {
	r := NewRunner()
	names := []string{"first", "second", "third"}

	for _, name := range names {
		check := newMockCheck(t)
		check.On("Name").Return(name)
		r.AddCheck(check)
	}

	require.Len(t, r.Checks(), 3)
	for i, want := range names {
		assert.Equal(t, want, r.Checks()[i].Name())
	}
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name    string
		results []*CheckResult
		want    Summary
	}{
		{name: "empty runner"},
		{
			name:    "single pass",
			results: []*CheckResult{{Status: SeverityPass}},
			want:    Summary{Passed: 1},
		},
		{
			name:    "single error",
			results: []*CheckResult{{Status: SeverityError}},
			want:    Summary{Errors: 1},
		},
		{
			name: "mixed severities",
			results: []*CheckResult{
				{Status: SeverityPass},
				{Status: SeverityPass},
				{Status: SeverityInfo},
				{Status: SeverityWarning},
				{Status: SeverityWarning},
				{Status: SeverityError},
			},
			want: Summary{Passed: 2, Info: 1, Warnings: 2, Errors: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			r := NewRunner().WithClock(testclock.NewClock(now))
			for _, result := range tt.results {
				check := newMockCheck(t)
				check.On("Run").Return(result).Once()
				r.AddCheck(check)
			}

			report := r.Run()

			assert.Equal(t, now, report.Timestamp)
			assert.Len(t, report.Results, len(tt.results))
			assert.Equal(t, tt.want, report.Summary)
			assert.Equal(t, tt.want.Errors > 0, report.HasErrors())
			assert.Equal(t, tt.want.Warnings > 0, report.HasWarnings())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
	}
}

func TestCheckResult_JSON(t *testing.T) {
	data, err := json.Marshal(&CheckResult{Name: "x", Category: "c", Status: SeverityWarning, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","category":"c","status":"warning","message":"m"}`, string(data))
}
