package printer

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// FrameConfig configures the embedded-page transport.
type FrameConfig struct {
	LoadTimeout time.Duration
	SettleDelay time.Duration
}

// FrameTransport serves the receipt page, with its auto-print script, from a
// loopback listener and points the browser at it. The job counts as printed
// once the page has been fetched and the settle delay has passed.
type FrameTransport struct {
	launcher    Launcher
	loadTimeout time.Duration
	settleDelay time.Duration
	handler     http.Handler

	mu      sync.Mutex
	pending map[string]*framePage
}

// framePage is a receipt page waiting for the browser to fetch it.
type framePage struct {
	html   []byte
	loaded chan struct{}
	once   sync.Once
}

// NewFrameTransport creates the embedded-page transport.
func NewFrameTransport(launcher Launcher, cfg FrameConfig) *FrameTransport {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 10 * time.Second
	}
	t := &FrameTransport{
		launcher:    launcher,
		loadTimeout: cfg.LoadTimeout,
		settleDelay: cfg.SettleDelay,
		pending:     make(map[string]*framePage),
	}

	router := gin.New()
	router.GET("/receipt/:id", t.servePage)
	t.handler = router
	return t
}

func (t *FrameTransport) servePage(c *gin.Context) {
	t.mu.Lock()
	page, ok := t.pending[c.Param("id")]
	t.mu.Unlock()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.html)
	page.once.Do(func() { close(page.loaded) })
}

func (t *FrameTransport) Name() Method {
	return MethodFrame
}

func (t *FrameTransport) Print(ctx context.Context, job *Job) error {
	if job.HTML == "" {
		return fmt.Errorf("%w: job has no rendered page", ErrUnsupported)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}

	page := &framePage{html: []byte(job.HTML), loaded: make(chan struct{})}
	t.mu.Lock()
	t.pending[job.ID] = page
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		if t.pending[job.ID] == page {
			delete(t.pending, job.ID)
		}
		t.mu.Unlock()
	}()

	srv := &http.Server{Handler: t.handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://%s/receipt/%s", ln.Addr().String(), job.ID)
	if err := t.launcher.OpenURL(url); err != nil {
		return fmt.Errorf("%w: %v", ErrSurface, err)
	}

	timer := time.NewTimer(t.loadTimeout)
	defer timer.Stop()
	select {
	case <-page.loaded:
	case <-timer.C:
		return fmt.Errorf("%w: page was not loaded within %s", ErrSurface, t.loadTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	// Give the page's print script time to hand the job to the spooler.
	_ = sleepCtx(ctx, t.settleDelay)
	return nil
}
