package printer

import (
	"context"
	"fmt"
	"os"
	"time"
)

// DialogTransport opens the receipt page in the browser and leaves the print
// dialog to the operator. Whether the operator actually printed cannot be
// observed, so it reports success once the page is opened.
type DialogTransport struct {
	launcher    Launcher
	settleDelay time.Duration
}

// NewDialogTransport creates the last-resort dialog transport.
func NewDialogTransport(launcher Launcher, settleDelay time.Duration) *DialogTransport {
	return &DialogTransport{launcher: launcher, settleDelay: settleDelay}
}

func (t *DialogTransport) Name() Method {
	return MethodDialog
}

func (t *DialogTransport) Print(ctx context.Context, job *Job) error {
	if job.HTML == "" {
		return fmt.Errorf("%w: job has no rendered page", ErrUnsupported)
	}

	f, err := os.CreateTemp("", "receipt-*.html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}
	// The browser reads the file asynchronously; keep it until the settle delay passes.
	defer os.Remove(f.Name())

	if _, err := f.WriteString(job.HTML); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}

	if err := t.launcher.OpenFile(f.Name()); err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}

	// The page is already up; a cancelled wait does not undo that.
	_ = sleepCtx(ctx, t.settleDelay)
	return nil
}
