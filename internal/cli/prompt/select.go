// Package prompt provides line-based interactive prompts for terminals
// where a full-screen picker is unavailable.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/floorper/floorper/internal/errors"
)

// Sentinel errors for selection.
var (
	ErrNoChoices          = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector asks the user to pick one entry of a numbered list.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{reader: r, writer: w}
}

// Select prints title and one numbered line per choice, then reads the
// 1-based index of the chosen entry. An empty answer picks the first
// entry, and a single choice is returned without prompting.
//
// Returns:
//   - ErrNoChoices if n is zero
//   - ErrInvalidSelection if the answer is not a number in range
//   - ErrSelectionCancelled if input ends (e.g., Ctrl+D)
func (s *Selector) Select(title string, n int, label func(i int) string) (int, error) {
	if n == 0 {
		return -1, ErrNoChoices
	}
	if n == 1 {
		return 0, nil
	}

	fmt.Fprintf(s.writer, "%s\n", title)
	for i := range n {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, label(i))
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	input, err := bufio.NewReader(s.reader).ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return -1, errors.Wrap(err, "reading selection")
		}
		if strings.TrimSpace(input) == "" {
			return -1, ErrSelectionCancelled
		}
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return -1, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > n {
		return -1, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, n)
	}
	return selection - 1, nil
}
