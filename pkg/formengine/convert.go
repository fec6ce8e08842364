package formengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter turns a rendered document into a fixed-layout artifact.
type Converter interface {
	// Available checks that the converter can run.
	Available(ctx context.Context) error
	// Convert writes the converted artifact into outDir and returns its path.
	Convert(ctx context.Context, input, outDir string) (string, error)
}

// CommandConverter runs an office suite in headless mode:
//
//	<command> --headless --convert-to <format> --outdir <dir> <input>
type CommandConverter struct {
	Command      string
	Format       string
	Timeout      time.Duration
	CheckTimeout time.Duration
}

// NewCommandConverter builds a converter from the engine configuration.
func NewCommandConverter(c *Config) *CommandConverter {
	return &CommandConverter{
		Command:      c.Converter,
		Format:       c.ConvertFormat,
		Timeout:      c.ConvertTimeout,
		CheckTimeout: c.ConvertCheckTimeout,
	}
}

// Extension returns the file extension produced for Format. A filter suffix
// ("pdf:writer_pdf_Export") is ignored.
func (c *CommandConverter) Extension() string {
	ext, _, _ := strings.Cut(c.Format, ":")
	return ext
}

// Available looks the command up and runs it with --version.
func (c *CommandConverter) Available(ctx context.Context) error {
	bin, err := exec.LookPath(c.Command)
	if err != nil {
		return &ConversionUnavailableError{Command: c.Command, Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.CheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--version")
	cmd.WaitDelay = time.Second
	if out, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &ConversionTimeoutError{Command: c.Command, Timeout: c.CheckTimeout}
		}
		return &ConversionUnavailableError{Command: c.Command, Cause: commandError(err, out)}
	}
	return nil
}

// Convert runs the conversion and verifies that the expected file exists.
func (c *CommandConverter) Convert(ctx context.Context, input, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command,
		"--headless", "--convert-to", c.Format, "--outdir", outDir, input)
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &ConversionTimeoutError{Command: c.Command, Timeout: c.Timeout}
	}
	if err != nil {
		return "", &ConversionUnavailableError{Command: c.Command, Cause: commandError(err, out)}
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	output := filepath.Join(outDir, stem+"."+c.Extension())
	if _, err := os.Stat(output); err != nil {
		return "", &ConversionUnavailableError{Command: c.Command, Cause: fmt.Errorf("no output produced: %w", err)}
	}
	return output, nil
}

func commandError(err error, out []byte) error {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return err
	}
	if len(out) > 512 {
		out = out[:512]
	}
	return fmt.Errorf("%w: %s", err, out)
}
