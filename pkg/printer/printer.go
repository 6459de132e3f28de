package printer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// DefaultNetworkTimeout bounds connecting to and writing to a network printer.
const DefaultNetworkTimeout = 10 * time.Second

// SerialOpener opens a serial line for writing.
type SerialOpener func(name string, baud int) (io.WriteCloser, error)

// DirectConfig configures the direct ESC/POS transport.
type DirectConfig struct {
	Timeout   time.Duration
	CopyDelay time.Duration
}

// DirectTransport sends encoded ESC/POS bytes straight to a printer: HTTP
// POST or raw TCP for network printers, or a serial line. It never retries.
type DirectTransport struct {
	client     *http.Client
	dialer     *net.Dialer
	openSerial SerialOpener
	timeout    time.Duration
	copyDelay  time.Duration
}

// NewDirectTransport creates the direct ESC/POS transport.
func NewDirectTransport(cfg DirectConfig) *DirectTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultNetworkTimeout
	}
	return &DirectTransport{
		client:     &http.Client{Timeout: cfg.Timeout},
		dialer:     &net.Dialer{Timeout: cfg.Timeout},
		openSerial: openSerialPort,
		timeout:    cfg.Timeout,
		copyDelay:  cfg.CopyDelay,
	}
}

// WithSerialOpener replaces how serial lines are opened.
func (t *DirectTransport) WithSerialOpener(open SerialOpener) *DirectTransport {
	t.openSerial = open
	return t
}

func (t *DirectTransport) Name() Method {
	return MethodDirectESCPOS
}

func (t *DirectTransport) Print(ctx context.Context, job *Job) error {
	switch job.kind() {
	case ConnectionNetwork:
		if job.Target.Address == "" {
			return fmt.Errorf("%w: network printer has no address", ErrUnsupported)
		}
		if job.Target.Protocol == ProtocolRaw {
			return t.printRaw(ctx, job)
		}
		return t.printHTTP(ctx, job)
	case ConnectionSerial:
		if job.Target.SerialPort == "" {
			return fmt.Errorf("%w: serial printer has no port", ErrUnsupported)
		}
		return t.printSerial(ctx, job)
	default:
		return fmt.Errorf("%w: %q connection", ErrUnsupported, job.kind())
	}
}

// printHTTP posts the payload to http://{ip}:{port}/print once per copy.
func (t *DirectTransport) printHTTP(ctx context.Context, job *Job) error {
	url := "http://" + hostPort(job.Target, 80) + "/print"
	for i := 0; i < job.copies(); i++ {
		if i > 0 {
			if err := sleepCtx(ctx, t.copyDelay); err != nil {
				return err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(job.Payload))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnection, err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConnection, url, err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: %s returned %s: %s", ErrConnection, url, resp.Status, strings.TrimSpace(string(body)))
		}
	}
	return nil
}

// printRaw writes the payload over one TCP connection (port 9100 by default).
func (t *DirectTransport) printRaw(ctx context.Context, job *Job) error {
	address := hostPort(job.Target, 9100)
	conn, err := t.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %v", ErrConnection, address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	for i := 0; i < job.copies(); i++ {
		if i > 0 {
			if err := sleepCtx(ctx, t.copyDelay); err != nil {
				return err
			}
		}
		if _, err := conn.Write(job.Payload); err != nil {
			return fmt.Errorf("%w: failed to write to %s: %v", ErrConnection, address, err)
		}
	}
	return nil
}

func (t *DirectTransport) printSerial(ctx context.Context, job *Job) error {
	port, err := t.openSerial(job.Target.SerialPort, job.Target.BaudRate)
	if err != nil {
		return fmt.Errorf("%w: failed to open serial port %s: %v", ErrDeviceUnavailable, job.Target.SerialPort, err)
	}
	defer port.Close()

	for i := 0; i < job.copies(); i++ {
		if i > 0 {
			if err := sleepCtx(ctx, t.copyDelay); err != nil {
				return err
			}
		}
		if _, err := port.Write(job.Payload); err != nil {
			return fmt.Errorf("%w: failed to write to serial port %s: %v", ErrTransfer, job.Target.SerialPort, err)
		}
	}
	return nil
}

// Probe checks that a network printer accepts connections or that a serial line opens.
func (t *DirectTransport) Probe(ctx context.Context, target *Target) error {
	if target == nil {
		return ErrUnsupported
	}
	switch target.Kind {
	case ConnectionNetwork:
		d := net.Dialer{Timeout: 2 * time.Second}
		def := 80
		if target.Protocol == ProtocolRaw {
			def = 9100
		}
		conn, err := d.DialContext(ctx, "tcp", hostPort(target, def))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return conn.Close()
	case ConnectionSerial:
		port, err := t.openSerial(target.SerialPort, target.BaudRate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
		return port.Close()
	default:
		return ErrUnsupported
	}
}

func hostPort(target *Target, defaultPort int) string {
	port := target.Port
	if port <= 0 {
		port = defaultPort
	}
	return net.JoinHostPort(target.Address, strconv.Itoa(port))
}

// serialPort drains pending output before closing so the last bytes reach the printer.
type serialPort struct {
	serial.Port
}

func (p serialPort) Close() error {
	_ = p.Drain()
	return p.Port.Close()
}

func openSerialPort(name string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = 9600 // Default baud rate for most thermal printers
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return serialPort{Port: port}, nil
}
