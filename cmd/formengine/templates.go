package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newEngine(cmd)
		if err != nil {
			return err
		}
		list, err := engine.Templates()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), list)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
		for _, t := range list {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, t.Size, t.Modified.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <template>",
	Short: "Show a template and the placeholders it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newEngine(cmd)
		if err != nil {
			return err
		}
		info, err := engine.TemplateInfo(args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), info)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:         %s\n", info.Name)
		fmt.Fprintf(out, "Path:         %s\n", info.Path)
		fmt.Fprintf(out, "Size:         %d\n", info.Size)
		fmt.Fprintf(out, "Modified:     %s\n", info.Modified.Format(time.RFC3339))
		fmt.Fprintf(out, "Placeholders: %s\n", strings.Join(info.Placeholders, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd, infoCmd)
	templatesCmd.Flags().Bool("json", false, "Print JSON")
	infoCmd.Flags().Bool("json", false, "Print JSON")
}
