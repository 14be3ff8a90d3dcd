package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

var (
	showFormat string
	showFiles  bool
)

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "o", "text", "output format: text, json, yaml, toml")
	showCmd.Flags().BoolVar(&showFiles, "files", false, "list archived files in text output")
	Cmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <backup>",
	Short: "Show the metadata of a backup",
	Long: `Show the metadata recorded in a backup archive.

The structured formats print the full metadata record including every
file with its size and SHA-256.`,
	Example: `  # Summary
  floorper backup show firefox_default_20260301_142233

  # Full record as YAML
  floorper backup show firefox_default_20260301_142233 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd.OutOrStdout(), newManager(cmd), args[0], showFormat, showFiles)
	},
}

func runShow(w io.Writer, mgr *backup.Manager, name, format string, listFiles bool) error {
	archivePath, err := mgr.Resolve(name)
	if err != nil {
		return errors.NewUserError(err, "Run: floorper backup list")
	}

	md, err := mgr.Get(archivePath)
	if err != nil {
		return errors.NewUserError(err, "Run: floorper backup verify "+name)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(md), "encoding JSON")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(md); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case "toml":
		return errors.Wrap(toml.NewEncoder(w).Encode(md), "encoding TOML")
	case "text", "":
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "use one of: text, json, yaml, toml")
	}

	fmt.Fprintf(w, "%s\n", cyan(filepath.Base(archivePath)))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Browser:\t%s\n", md.BrowserID)
	fmt.Fprintf(tw, "  Profile:\t%s\n", md.ProfileName)
	fmt.Fprintf(tw, "  Created:\t%s\n", md.CreatedAt)
	fmt.Fprintf(tw, "  Source:\t%s\n", md.SourcePath)
	fmt.Fprintf(tw, "  Files:\t%d\n", md.Summary.FileCount)
	fmt.Fprintf(tw, "  Size:\t%s\n", humanize.IBytes(uint64(md.Summary.TotalSize)))
	if md.FloorperVersion != "" {
		fmt.Fprintf(tw, "  Written by:\tfloorper %s\n", md.FloorperVersion)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}

	if listFiles {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, f := range md.Files {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Path, humanize.IBytes(uint64(f.Size)), gray(shortHash(f.Hash)))
		}
		return errors.Wrap(tw.Flush(), "writing output")
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
