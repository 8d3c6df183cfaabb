// Package actions implements the parts of the GitHub Actions runner protocol used by the
// render step: reading inputs, setting outputs and reporting failures.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	log "github.com/sirupsen/logrus"
)

// Runner is the environment of a running action step
type Runner struct {
	Fs     afero.Fs
	Getenv func(string) string
	Out    io.Writer

	failed bool
}

// NewRunner creates a runner for the current process environment
func NewRunner() *Runner {
	return &Runner{
		Fs:     afero.NewOsFs(),
		Getenv: os.Getenv,
		Out:    os.Stdout,
	}
}

// Input returns the trimmed value of the named input.  A required input that is
// missing or empty is an error.
func (r *Runner) Input(name string, required bool) (string, error) {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	val := strings.TrimSpace(r.Getenv(key))
	if required && val == "" {
		return "", fmt.Errorf("Input required and not supplied: %s", name)
	}
	return val, nil
}

// BoolInput returns the value of an optional boolean input, following the YAML 1.2 core schema
func (r *Runner) BoolInput(name string) (bool, error) {
	val, err := r.Input(name, false)
	if err != nil {
		return false, err
	}

	switch val {
	case "":
		return false, nil
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}

	return false, fmt.Errorf("Input does not meet YAML 1.2 \"Core Schema\" specification: %s\nSupport boolean input list: `true | True | TRUE | false | False | FALSE`", name)
}

// Workspace is the directory relative task definition paths are resolved against
func (r *Runner) Workspace() string {
	if w := r.Getenv("GITHUB_WORKSPACE"); w != "" {
		return w
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Warnf("unable to determine working directory: %s", err)
		return "."
	}
	return wd
}

// TempDir is the directory rendered task definitions are written to
func (r *Runner) TempDir() string {
	if d := r.Getenv("RUNNER_TEMP"); d != "" {
		return d
	}
	return os.TempDir()
}

// Debug returns true when step debug logging is enabled for the workflow run
func (r *Runner) Debug() bool {
	return r.Getenv("RUNNER_DEBUG") == "1"
}

// SetOutput sets a step output.  Outputs are appended to the GITHUB_OUTPUT file when
// the runner provides one, otherwise the legacy set-output command is used.
func (r *Runner) SetOutput(name, value string) error {
	path := r.Getenv("GITHUB_OUTPUT")
	if path == "" {
		fmt.Fprintf(r.Out, "::set-output name=%s::%s\n", escapeProperty(name), escapeData(value))
		return nil
	}

	delimiter := "ghadelimiter_" + uuid.New().String()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("unexpected input: output %s contains the delimiter %s", name, delimiter)
	}

	f, err := r.Fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to open output file "+path)
	}
	defer f.Close()

	log.Debugf("setting output %s in %s", name, path)

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter); err != nil {
		return errors.Wrap(err, "unable to write output file "+path)
	}

	return nil
}

// SetFailed reports the step as failed with the given message
func (r *Runner) SetFailed(msg string) {
	r.failed = true
	fmt.Fprintf(r.Out, "::error::%s\n", escapeData(msg))
}

// ExitCode is the exit code for the step process
func (r *Runner) ExitCode() int {
	if r.failed {
		return 1
	}
	return 0
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
