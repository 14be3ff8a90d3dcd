package backup

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/cli/prompt"
	"github.com/floorper/floorper/internal/errors"
)

// errPickerAborted is returned when the user leaves the picker without
// choosing an archive.
var errPickerAborted = errors.New("no backup selected")

func archiveLabel(info backup.Info) string {
	return fmt.Sprintf("%s/%s  %s", info.BrowserID, info.ProfileName, info.Timestamp)
}

// selectArchive lets the user pick one of infos: with a fuzzy finder on a
// terminal, from a numbered list otherwise. It is a variable so tests can
// replace the UI.
var selectArchive = func(infos []backup.Info) (backup.Info, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return selectArchiveFrom(prompt.NewSelector(), infos)
	}

	idx, err := fuzzyfinder.Find(
		infos,
		func(i int) string {
			return archiveLabel(infos[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			info := infos[i]
			return fmt.Sprintf("File: %s\nBrowser: %s\nProfile: %s\nCreated: %s\n\nFiles: %d\nSize: %s",
				info.Filename,
				info.BrowserID,
				info.ProfileName,
				info.CreatedAt,
				info.Summary.FileCount,
				humanize.IBytes(uint64(info.Summary.TotalSize)),
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return backup.Info{}, errPickerAborted
		}
		return backup.Info{}, errors.Wrap(err, "interactive selection failed")
	}
	return infos[idx], nil
}

// selectArchiveFrom picks an archive from a numbered list.
func selectArchiveFrom(sel *prompt.Selector, infos []backup.Info) (backup.Info, error) {
	idx, err := sel.Select("Backups, newest first:", len(infos), func(i int) string {
		return archiveLabel(infos[i])
	})
	if err != nil {
		if errors.Is(err, prompt.ErrSelectionCancelled) {
			return backup.Info{}, errPickerAborted
		}
		return backup.Info{}, errors.NewUserError(err, "enter the number of a listed backup")
	}
	return infos[idx], nil
}
