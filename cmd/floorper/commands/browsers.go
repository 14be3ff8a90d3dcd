package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/logging"
)

var (
	browsersAll  bool
	browsersJSON bool
)

func init() {
	browsersCmd.Flags().BoolVar(&browsersAll, "all", false, "include browsers that are not installed")
	browsersCmd.Flags().BoolVar(&browsersJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(browsersCmd)
}

var browsersCmd = &cobra.Command{
	Use:   "browsers",
	Short: "List detected browsers and their profiles",
	Long: `List the browsers found on this machine and the profiles of each.

The browser ids shown here are the values accepted by --browser.`,
	Example: `  floorper browsers
  floorper browsers --all --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loc := browser.NewLocator(browser.WithLogger(logging.FromContext(cmd.Context())))
		return runBrowsers(cmd.OutOrStdout(), loc, browsersAll, browsersJSON)
	},
}

// browserEntry is one row of the browsers output.
type browserEntry struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Family    browser.Family    `json:"family"`
	Installed bool              `json:"installed"`
	Root      string            `json:"root,omitempty"`
	Profiles  []browser.Profile `json:"profiles"`
}

func runBrowsers(w io.Writer, loc *browser.Locator, all, asJSON bool) error {
	installed := make(map[string]string)
	for _, inst := range loc.Detect() {
		installed[inst.Browser.ID] = inst.Root
	}

	var entries []browserEntry
	for _, b := range browser.Known() {
		root, ok := installed[b.ID]
		if !ok && !all {
			continue
		}
		entry := browserEntry{ID: b.ID, Name: b.Name, Family: b.Family, Installed: ok, Root: root, Profiles: []browser.Profile{}}
		if ok {
			profiles, err := loc.Profiles(b.ID)
			if err != nil {
				return errors.NewSystemError(err, "")
			}
			entry.Profiles = profiles
		}
		entries = append(entries, entry)
	}
	if entries == nil {
		entries = []browserEntry{}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(entries), "encoding JSON")
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No supported browsers found.")
		fmt.Fprintln(w, "Use --all to list supported browsers, or back up a directory with: floorper backup create --path <dir> --browser <id>")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROFILE\tPATH")
	for _, e := range entries {
		if !e.Installed {
			fmt.Fprintf(tw, "%s\t%s\t-\t(not installed)\n", e.ID, e.Name)
			continue
		}
		if len(e.Profiles) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t%s\n", e.ID, e.Name, e.Root)
			continue
		}
		for _, p := range e.Profiles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, p.Name, p.Path)
		}
	}
	return errors.Wrap(tw.Flush(), "writing table")
}
