package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/floorper/floorper/internal/errors"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if genDocDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "pass --dir")
		}
		if err := genDocs(genDocDir, genDocFormat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func genDocs(dir, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	rootCmd.DisableAutoGenTag = true
	switch format {
	case "markdown", "md":
		return errors.Wrap(doc.GenMarkdownTreeCustom(rootCmd, dir, filePrepender, linkHandler), "generating markdown")
	case "man":
		header := &doc.GenManHeader{Title: "FLOORPER", Section: "1", Source: "floorper"}
		return errors.Wrap(doc.GenManTree(rootCmd, header, dir), "generating man pages")
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "use markdown or man")
	}
}

func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	// floorper_backup_create.md -> floorper backup create
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s"
---
`, title, title)
}

func linkHandler(name string) string {
	return "./" + strings.ToLower(name)
}
