package printer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// Method names a transport. The order of the constants is the fallback priority.
type Method string

const (
	MethodAuto         Method = "auto"
	MethodDirectESCPOS Method = "direct-escpos"
	MethodUSB          Method = "webusb"
	MethodFrame        Method = "iframe-direct"
	MethodSilent       Method = "browser-silent"
	MethodDialog       Method = "browser-dialog"
)

// ParseMethod accepts the method names used by POS clients. An empty string means auto.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return MethodAuto, nil
	case "direct-escpos", "escpos", "network":
		return MethodDirectESCPOS, nil
	case "webusb", "usb":
		return MethodUSB, nil
	case "iframe-direct", "iframe", "frame":
		return MethodFrame, nil
	case "browser-silent", "silent", "spooler":
		return MethodSilent, nil
	case "browser-dialog", "dialog", "browser":
		return MethodDialog, nil
	default:
		return "", fmt.Errorf("printer: unknown print method %q", s)
	}
}

// ConnectionKind is the shape of a printer's connection descriptor.
type ConnectionKind string

const (
	ConnectionNetwork ConnectionKind = "network"
	ConnectionSerial  ConnectionKind = "serial"
	ConnectionUSB     ConnectionKind = "usb"
	ConnectionSystem  ConnectionKind = "system"
	ConnectionBrowser ConnectionKind = "browser"
)

// Network protocols for ConnectionNetwork targets.
const (
	ProtocolHTTP = "http"
	ProtocolRaw  = "raw"
)

// Target is the resolved printer a job is sent to.
type Target struct {
	ID           string
	Name         string
	Kind         ConnectionKind
	Address      string
	Port         int
	Protocol     string
	SerialPort   string
	BaudRate     int
	VendorID     uint16
	ProductID    uint16
	DevicePath   string
	Queue        string
	PaperWidthMM float64
	FixedLength  bool
}

// Job is everything a transport may need to deliver one receipt.
type Job struct {
	ID       string
	Target   *Target
	Document *receipt.Document
	Payload  []byte
	Text     string
	HTML     string
	Paper    receipt.PaperSize
	Copies   int
}

func (j *Job) copies() int {
	if j.Copies < 1 {
		return 1
	}
	return j.Copies
}

func (j *Job) kind() ConnectionKind {
	if j.Target == nil {
		return ""
	}
	return j.Target.Kind
}

// Transport delivers a job over one channel. Implementations return an error
// wrapping ErrUnsupported when the job's printer is not reachable through
// them, and must release every resource they acquire on all exit paths.
// Copies are handled inside Print.
type Transport interface {
	Name() Method
	Print(ctx context.Context, job *Job) error
}

// Prober reports whether a target is reachable without printing.
type Prober interface {
	Probe(ctx context.Context, target *Target) error
}
