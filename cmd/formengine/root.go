package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
)

var rootCmd = &cobra.Command{
	Use:   "formengine",
	Short: "Render research project forms from DOCX templates",
	Long: `formengine fills DOCX form templates with project data, converts the result
to PDF when a converter is available, and checks workflow transitions against
the forms they require.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().String("template-dir", "", "Directory containing the .docx templates")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory receiving rendered documents")
	rootCmd.PersistentFlags().Bool("no-convert", false, "Skip PDF conversion")
}

// loadConfig layers the config file, the environment and the persistent flags.
func loadConfig(cmd *cobra.Command) (*formengine.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := formengine.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"log-level":    &cfg.LogLevel,
		"template-dir": &cfg.TemplateDir,
		"output-dir":   &cfg.OutputDir,
	}
	for name, dst := range overrides {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	if noConvert, _ := cmd.Flags().GetBool("no-convert"); noConvert {
		cfg.ConvertEnabled = false
	}
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, cfg *formengine.Config) *slog.Logger {
	return formengine.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
}

// newEngine builds an engine with the standard form post-processors.
func newEngine(cmd *cobra.Command, extra ...formengine.Option) (*formengine.Engine, *formengine.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts := append(forms.Default().EngineOptions(), formengine.WithLogger(newLogger(cmd, cfg)))
	opts = append(opts, extra...)

	engine, err := formengine.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return engine, cfg, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
