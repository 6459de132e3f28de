package printer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDeviceUnavailable means no permitted device matches the configured descriptor.
	ErrDeviceUnavailable = errors.New("printer: device unavailable")
	// ErrTransfer means bytes could not be delivered to an opened device.
	ErrTransfer = errors.New("printer: transfer failed")
	// ErrConnection means the printer endpoint could not be reached or rejected the job.
	ErrConnection = errors.New("printer: connection failed")
	// ErrSurface means no print surface (browser, spooler page) could be brought up.
	ErrSurface = errors.New("printer: print surface unavailable")
	// ErrUnsupported means the transport does not apply to the job's printer. Recorded as skipped.
	ErrUnsupported = errors.New("printer: transport not supported for this printer")
	// ErrTimeout means an attempt exceeded its time budget.
	ErrTimeout = errors.New("printer: attempt timed out")
	// ErrExhausted means every candidate transport failed.
	ErrExhausted = errors.New("printer: all transports failed")
	// ErrEmptyJob means there was neither content nor an order to print.
	ErrEmptyJob = errors.New("printer: nothing to print")
	// ErrUnknownPrinter means the requested printer is not registered.
	ErrUnknownPrinter = errors.New("printer: unknown printer")
)

// ExhaustedError is returned when no transport succeeded. It carries the full attempt log.
type ExhaustedError struct {
	Attempt *Attempt
}

func (e *ExhaustedError) Error() string {
	if e.Attempt == nil || len(e.Attempt.Records) == 0 {
		return ErrExhausted.Error()
	}
	parts := make([]string, 0, len(e.Attempt.Records))
	for _, r := range e.Attempt.Records {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Transport, r.Error))
	}
	return ErrExhausted.Error() + " (" + strings.Join(parts, "; ") + ")"
}

// Is makes errors.Is(err, ErrExhausted) hold.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}
