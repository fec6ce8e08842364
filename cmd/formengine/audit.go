package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the render history from the audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newEngine(cmd)
		if err != nil {
			return err
		}
		records, err := engine.AuditLog().Records()
		if err != nil {
			return err
		}

		proposal, _ := cmd.Flags().GetString("proposal")
		template, _ := cmd.Flags().GetString("template")
		var out []formengine.RenderResult
		for _, r := range records {
			if proposal != "" && (r.ProposalID == nil || *r.ProposalID != proposal) {
				continue
			}
			if template != "" && r.Template != template {
				continue
			}
			out = append(out, r)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), out)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTEMPLATE\tUSER\tDOCX\tPDF")
		for _, r := range out {
			pdf := "-"
			if r.PDFPath != nil {
				pdf = *r.PDFPath
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Timestamp.Format(time.RFC3339), r.Template, r.UserID, r.DocxPath, pdf)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().String("proposal", "", "Only show records of this proposal")
	auditCmd.Flags().String("template", "", "Only show records of this template file name")
	auditCmd.Flags().Bool("json", false, "Print JSON")
}
