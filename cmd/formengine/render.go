package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template with data from a JSON or YAML file",
	Long: `Fills a template with the context read from --context and prints the render
result as JSON. With --form the context is completed and validated by the form
registry first (dates, checkbox marks, required fields).`,
	Example: `  formengine render --form 1b --context proposal.yaml --user u-17
  formengine render --template memo.docx --context - < data.json`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("template", "t", "", "Template name")
	renderCmd.Flags().StringP("form", "f", "", "Form id (1b, PL1, 2b, ...)")
	renderCmd.Flags().StringP("context", "c", "", "Context file (JSON or YAML, - for stdin)")
	renderCmd.Flags().StringP("user", "u", "", "User recorded in the audit log")
	renderCmd.Flags().String("proposal", "", "Proposal the document belongs to")
	renderCmd.Flags().StringSlice("list-var", nil, "Variables whose paragraphs are left aligned")
}

func runRender(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetString("template")
	formID, _ := cmd.Flags().GetString("form")
	contextPath, _ := cmd.Flags().GetString("context")
	user, _ := cmd.Flags().GetString("user")
	proposal, _ := cmd.Flags().GetString("proposal")
	listVars, _ := cmd.Flags().GetStringSlice("list-var")

	if (template == "") == (formID == "") {
		return errors.New("exactly one of --template or --form is required")
	}

	data := formengine.Context{}
	if contextPath != "" {
		var err error
		if data, err = readContext(cmd.InOrStdin(), contextPath); err != nil {
			return err
		}
	}

	req := formengine.RenderRequest{
		Template:      template,
		Context:       data,
		UserID:        user,
		ProposalID:    proposal,
		ListVariables: listVars,
	}
	if formID != "" {
		f, err := forms.Default().Lookup(formID)
		if err != nil {
			return err
		}
		if req, err = forms.Default().Request(f.ID, data, forms.RequestOptions{UserID: user, ProposalID: proposal}); err != nil {
			return err
		}
		req.ListVariables = listVars
	}

	engine, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	res, err := engine.Render(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// readContext decodes a context file. JSON is read by the YAML decoder as a
// subset of YAML.
func readContext(stdin io.Reader, path string) (formengine.Context, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}

	ctx := formengine.Context{}
	if err := yaml.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("parse context %s: %w", path, err)
	}
	return ctx, nil
}
