package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SpoolerTransport submits the plain-text receipt to the system print
// spooler without any dialog, using lp or lpr.
type SpoolerTransport struct {
	command string
	run     CommandRunner
}

// NewSpoolerTransport creates the silent spooler transport. command is the
// spooler binary; an empty command means lp.
func NewSpoolerTransport(command string, run CommandRunner) *SpoolerTransport {
	if command == "" {
		command = "lp"
	}
	if run == nil {
		run = execRunner
	}
	return &SpoolerTransport{command: command, run: run}
}

func (t *SpoolerTransport) Name() Method {
	return MethodSilent
}

func (t *SpoolerTransport) Print(ctx context.Context, job *Job) error {
	switch job.kind() {
	case "", ConnectionSystem, ConnectionBrowser:
	default:
		return fmt.Errorf("%w: %q connection", ErrUnsupported, job.kind())
	}
	if job.Text == "" {
		return fmt.Errorf("%w: job has no text rendering", ErrUnsupported)
	}

	f, err := os.CreateTemp("", "receipt-*.txt")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(job.Text); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}

	args := t.args(job, f.Name())
	out, err := t.run(ctx, t.command, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s is not installed", ErrUnsupported, t.command)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %v: %s", ErrTransfer, t.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (t *SpoolerTransport) args(job *Job, file string) []string {
	media := fmt.Sprintf("media=Custom.%sx%dmm",
		strconv.FormatFloat(job.Paper.WidthMM, 'f', -1, 64), job.Paper.HeightMM)

	var queue string
	if job.Target != nil {
		queue = job.Target.Queue
	}

	if filepath.Base(t.command) == "lpr" {
		args := []string{"-#", strconv.Itoa(job.copies()), "-o", media}
		if queue != "" {
			args = append(args, "-P", queue)
		}
		return append(args, file)
	}

	args := []string{"-n", strconv.Itoa(job.copies()), "-o", media}
	if queue != "" {
		args = append(args, "-d", queue)
	}
	return append(args, file)
}
