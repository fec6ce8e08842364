package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-formengine/pkg/forms"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List registered forms",
	Long:  `Lists the form registry, optionally restricted to one phase or to the forms of one workflow state.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := forms.Default()
		stateName, _ := cmd.Flags().GetString("state")
		phase, _ := cmd.Flags().GetString("phase")

		list := reg.Forms()
		switch {
		case stateName != "":
			state, err := workflow.ParseState(stateName)
			if err != nil {
				return err
			}
			sf := reg.ForState(state)
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), sf)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "required: %s\noptional: %s\n", joinIDs(sf.Required), joinIDs(sf.Optional))
			return nil
		case phase != "":
			list = reg.ForPhase(workflow.Phase(strings.ToUpper(phase)))
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), list)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTEMPLATE\tPHASE\tNAME")
		for _, f := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Template, f.Phase, f.Name)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(formsCmd)
	formsCmd.Flags().String("state", "", "Show the required and optional forms of a workflow state")
	formsCmd.Flags().String("phase", "", "Only list forms of this phase")
	formsCmd.Flags().Bool("json", false, "Print JSON")
}

func joinIDs(ids []workflow.FormID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
