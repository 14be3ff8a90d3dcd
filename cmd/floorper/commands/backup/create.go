package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/errors"
)

var (
	createTarget filterFlags
	createPath   string
	createJSON   bool
)

func init() {
	createTarget.register(createCmd)
	createCmd.Flags().StringVar(&createPath, "path", "", "profile directory to back up")
	createCmd.Flags().BoolVar(&createJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Back up browser profiles",
	Long: `Back up one or more browser profiles.

With --path, the given directory is archived under the --browser and
--profile names (the profile name defaults to the directory name).
Otherwise the profiles of --browser (or default_browser) are located
automatically; --profile limits the backup to one of them.

Lock files, caches and temp files are never archived. Files that cannot be
read are reported and skipped.`,
	Example: `  # Back up all Firefox profiles
  floorper backup create --browser firefox

  # Back up a single Chrome profile
  floorper backup create --browser chrome --profile "Profile 1"

  # Back up a directory
  floorper backup create --path /mnt/old/.mozilla/firefox/x.default --browser firefox

  See Also:
    floorper backup list   - List backups
    floorper browsers      - List detected profiles`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		targets, err := resolveTargets(newLocator(cmd), createTarget, createPath, flags.Config().DefaultBrowser)
		if err != nil {
			return err
		}
		return runCreate(cmd.OutOrStdout(), newManager(cmd), targets, createJSON)
	},
}

// resolveTargets turns the command line into the list of profiles to back up.
func resolveTargets(loc *browser.Locator, f filterFlags, path, defaultBrowser string) ([]browser.Profile, error) {
	id := f.browser
	if id == "" {
		id = defaultBrowser
	}

	if path != "" {
		if id == "" {
			return nil, errors.NewUserError(errors.New("--browser is required with --path"),
				"pass --browser or set default_browser in the config file")
		}
		name := f.profile
		if name == "" {
			name = filepath.Base(filepath.Clean(path))
		}
		return []browser.Profile{{BrowserID: id, Name: name, Path: path}}, nil
	}

	if id == "" {
		return nil, errors.NewUserError(errors.New("no browser selected"),
			"pass --browser, --path, or set default_browser in the config file")
	}

	if f.profile != "" {
		p, err := loc.Find(id, f.profile)
		if err != nil {
			return nil, errors.NewUserError(err, "Run: floorper browsers")
		}
		return []browser.Profile{p}, nil
	}

	profiles, err := loc.Profiles(id)
	if err != nil {
		return nil, errors.NewUserError(err, "Run: floorper browsers")
	}
	if len(profiles) == 0 {
		return nil, errors.NewUserError(errors.Newf("no %s profiles found", id), "use --path to back up a profile directory")
	}
	return profiles, nil
}

// createOutput is the JSON shape of a create run.
type createOutput struct {
	Created []*backup.CreateResult `json:"created"`
	Failed  []createFailure        `json:"failed"`
}

type createFailure struct {
	BrowserID   string `json:"browser_id"`
	ProfileName string `json:"profile_name"`
	Path        string `json:"path"`
	Error       string `json:"error"`
}

func runCreate(w io.Writer, mgr *backup.Manager, targets []browser.Profile, asJSON bool) error {
	out := createOutput{
		Created: make([]*backup.CreateResult, 0, len(targets)),
		Failed:  []createFailure{},
	}

	for _, t := range targets {
		res, err := mgr.Create(t.Path, t.BrowserID, t.Name)
		if err != nil {
			if len(targets) == 1 {
				if errors.Is(err, backup.ErrNotFound) {
					return errors.NewUserError(err, "check the profile path")
				}
				return errors.NewSystemError(err, "check that the backup directory is writable")
			}
			out.Failed = append(out.Failed, createFailure{
				BrowserID:   t.BrowserID,
				ProfileName: t.Name,
				Path:        t.Path,
				Error:       err.Error(),
			})
			if !asJSON {
				fmt.Fprintf(w, "%s %s/%s: %v\n", red("✗"), t.BrowserID, t.Name, err)
			}
			continue
		}
		out.Created = append(out.Created, res)

		if asJSON {
			continue
		}
		md := res.Metadata
		fmt.Fprintf(w, "%s %s/%s: created %s (%d files, %s)\n",
			green("✓"), t.BrowserID, t.Name, bold(filepath.Base(res.Path)),
			md.Summary.FileCount, humanize.IBytes(uint64(md.Summary.TotalSize)))
		for _, s := range res.Skipped {
			fmt.Fprintf(w, "  %s skipped %s: %v\n", yellow("!"), s.Path, s.Err)
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	}

	if n := len(out.Failed); n > 0 {
		return errors.NewSystemError(errors.Newf("%d of %d backups failed", n, len(targets)), "")
	}
	return nil
}
