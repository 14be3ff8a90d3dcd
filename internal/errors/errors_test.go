package errors

import (
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(Wrap(ErrInvalidConfig, "loading config"), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "success code with error",
			err:  NewExitError(New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     true,
		},
		{
			name:       "unwrap through fmt wrapped error",
			err:        NewExitError(fmt.Errorf("resolving browser: %w", ErrUnknownBrowser), ExitUser),
			wantTarget: ErrUnknownBrowser,
			wantIs:     true,
		},
		{
			name:       "unwrap through Wrapf",
			err:        NewExitError(Wrapf(ErrNotFound, "archive %s", "x.zip"), ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrInvalidConfig,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantAs   bool
	}{
		{
			name:     "direct ExitError",
			err:      NewExitError(ErrNotFound, ExitUser),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "wrapped ExitError",
			err:      Wrap(NewSystemError(ErrNotFound, "check disk"), "command failed"),
			wantCode: ExitSystem,
			wantAs:   true,
		},
		{
			name:     "non-ExitError",
			err:      ErrNotFound,
			wantCode: 0,
			wantAs:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *ExitError
			gotAs := As(tt.err, &exitErr)
			if gotAs != tt.wantAs {
				t.Errorf("As() = %v, want %v", gotAs, tt.wantAs)
			}
			if gotAs && exitErr.Code != tt.wantCode {
				t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	user := NewUserError(ErrInvalidConfig, "fix it")
	if user.Code != ExitUser || user.Suggestion != "fix it" {
		t.Errorf("NewUserError() = %+v", user)
	}

	sys := NewSystemError(ErrNotFound, "retry")
	if sys.Code != ExitSystem || sys.Suggestion != "retry" {
		t.Errorf("NewSystemError() = %+v", sys)
	}

	cfg := NewConfigError(ErrInvalidConfig)
	if cfg.Code != ExitUser || cfg.Suggestion != "Run: floorper doctor" {
		t.Errorf("NewConfigError() = %+v", cfg)
	}
}

func TestMark(t *testing.T) {
	err := Mark(New("disk full"), ErrNotFound)
	if !Is(err, ErrNotFound) {
		t.Error("marked error should match its mark")
	}
	if err.Error() != "disk full" {
		t.Errorf("Mark() changed message: %q", err.Error())
	}
}
