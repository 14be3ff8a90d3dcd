package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorper/floorper/internal/errors"
)

var archives = []string{
	"firefox_default_20260301_142233.zip",
	"firefox_default_20260228_090000.zip",
	"firefox_default_20260227_090000.zip",
}

func label(i int) string { return archives[i] }

func TestSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{"explicit choice", "2\n", 1, nil},
		{"empty answer picks first", "\n", 0, nil},
		{"answer without newline", "3", 2, nil},
		{"surrounding whitespace", "  3  \n", 2, nil},
		{"not a number", "abc\n", -1, ErrInvalidSelection},
		{"zero", "0\n", -1, ErrInvalidSelection},
		{"out of range", "4\n", -1, ErrInvalidSelection},
		{"end of input", "", -1, ErrSelectionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)

			got, err := s.Select("Pick a backup:", len(archives), label)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect_PrintsNumberedChoices(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader("1\n"), &buf)
	_, err := s.Select("Pick a backup:", len(archives), label)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Pick a backup:")
	for i, a := range archives {
		assert.Contains(t, out, fmt.Sprintf("[%d] %s", i+1, a))
	}
	assert.Contains(t, out, "Select [1]: ")
}

func TestSelect_SingleChoiceDoesNotPrompt(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader(""), &buf)
	got, err := s.Select("Pick a backup:", 1, label)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Empty(t, buf.String())
}

func TestSelect_NoChoices(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := s.Select("Pick a backup:", 0, label)
	assert.True(t, errors.Is(err, ErrNoChoices))
}
