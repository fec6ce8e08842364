package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.docx>...",
	Short: "Report placeholders left in rendered documents",
	Long:  `Scans body, tables, headers and footers of each document and fails if any placeholder survived rendering.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		dirty := 0
		for _, path := range args {
			report, err := formengine.VerifyFile(path)
			if err != nil {
				return err
			}
			if report.Clean() {
				fmt.Fprintf(out, "%s: ok (%d paragraphs)\n", path, report.Paragraphs)
				continue
			}
			dirty++
			for _, l := range report.Leftovers {
				fmt.Fprintf(out, "%s: %s: %s\n", path, l.Location, l.Raw)
			}
		}
		if dirty > 0 {
			return fmt.Errorf("%d of %d documents contain placeholders", dirty, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
