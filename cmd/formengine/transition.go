package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

var transitionCmd = &cobra.Command{
	Use:   "transition",
	Short: "Inspect and check workflow transitions",
}

var transitionCheckCmd = &cobra.Command{
	Use:   "check <from> <to>",
	Short: "Check whether a transition is allowed given the completed forms",
	Long: `Validates the transition and prints the result as JSON. With --render-missing
the forms the transition still needs are rendered from the --inputs file:

  shared:            # merged into every form
    ten_de_tai: ...
  forms:
    2b: {...}
    3b: {is_approved: false}`,
	Args: cobra.ExactArgs(2),
	RunE: runTransitionCheck,
}

var transitionListCmd = &cobra.Command{
	Use:   "list [state]",
	Short: "List allowed transitions, of one state or of the whole workflow",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edges := workflow.Transitions()
		if len(args) == 1 {
			state, err := workflow.ParseState(args[0])
			if err != nil {
				return err
			}
			edges = workflow.AllowedTransitions(state)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FROM\tTO\tFORMS\tAPPROVALS")
		for _, t := range edges {
			ids := make([]string, len(t.RequiredForms))
			for i, id := range t.RequiredForms {
				ids[i] = string(id)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.From, t.To, strings.Join(ids, ","), t.MinApprovals)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(transitionCmd)
	transitionCmd.AddCommand(transitionCheckCmd, transitionListCmd)

	transitionCheckCmd.Flags().StringSlice("completed", nil, "Completed form ids")
	transitionCheckCmd.Flags().Int("approvals", -1, "Approval votes cast, checked against the transition minimum")
	transitionCheckCmd.Flags().Bool("render-missing", false, "Render the forms the transition still requires")
	transitionCheckCmd.Flags().String("inputs", "", "YAML or JSON file with shared and per-form contexts")
	transitionCheckCmd.Flags().StringP("user", "u", "", "User recorded in the audit log")
	transitionCheckCmd.Flags().String("proposal", "", "Proposal the documents belong to")
}

// batchFile is the layout of the --inputs file.
type batchFile struct {
	Shared formengine.Context            `yaml:"shared"`
	Forms  map[string]formengine.Context `yaml:"forms"`
}

func runTransitionCheck(cmd *cobra.Command, args []string) error {
	from, err := workflow.ParseState(args[0])
	if err != nil {
		return err
	}
	to, err := workflow.ParseState(args[1])
	if err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringSlice("completed")
	completed := make([]workflow.FormID, 0, len(names))
	for _, n := range names {
		completed = append(completed, forms.ParseFormID(n))
	}

	res := workflow.ValidateTransition(from, to, completed)
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if votes, _ := cmd.Flags().GetInt("approvals"); res.Valid && votes >= 0 {
		return workflow.CheckApprovals(from, to, votes)
	}

	renderMissing, _ := cmd.Flags().GetBool("render-missing")
	if !renderMissing || res.Code != workflow.CodeMissingRequiredForms {
		return res.Err()
	}

	inputsPath, _ := cmd.Flags().GetString("inputs")
	if inputsPath == "" {
		return errors.New("--render-missing needs --inputs")
	}
	in, err := readInputs(inputsPath)
	if err != nil {
		return err
	}
	in.UserID, _ = cmd.Flags().GetString("user")
	in.ProposalID, _ = cmd.Flags().GetString("proposal")

	engine, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	results, err := forms.RenderRequired(cmd.Context(), engine, res, in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), results)
}

func readInputs(path string) (forms.Inputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return forms.Inputs{}, fmt.Errorf("read inputs: %w", err)
	}
	var bf batchFile
	if err := yaml.Unmarshal(raw, &bf); err != nil {
		return forms.Inputs{}, fmt.Errorf("parse inputs %s: %w", path, err)
	}

	in := forms.Inputs{
		Shared: bf.Shared,
		Forms:  make(map[workflow.FormID]formengine.Context, len(bf.Forms)),
	}
	for name, ctx := range bf.Forms {
		in.Forms[forms.ParseFormID(name)] = ctx
	}
	return in, nil
}
