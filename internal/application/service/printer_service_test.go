package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

type stubTransport struct {
	name  printer.Method
	err   error
	probe error
	jobs  []*printer.Job
}

func (s *stubTransport) Name() printer.Method { return s.name }

func (s *stubTransport) Print(_ context.Context, job *printer.Job) error {
	s.jobs = append(s.jobs, job)
	return s.err
}

func (s *stubTransport) Probe(context.Context, *printer.Target) error { return s.probe }

type stubDiscoverer struct {
	found []printer.Discovered
	err   error
}

func (d stubDiscoverer) Discover(context.Context) ([]printer.Discovered, error) {
	return d.found, d.err
}

func newTestService(t *testing.T, transports ...printer.Transport) (*PrinterService, *PrinterRegistry) {
	t.Helper()
	reg := NewPrinterRegistry(&memPrinterRepo{}, nil)
	_, err := reg.Add(networkPrinter("Counter"))
	require.NoError(t, err)

	orch := printer.NewOrchestrator(reg, nil, printer.Config{
		AttemptTimeout: time.Second,
		Encoder:        printer.DefaultEncoderProfile(),
		Receipt:        receipt.DefaultOptions(),
	}, transports...)
	return NewPrinterService(orch, reg, nil,
		stubDiscoverer{found: []printer.Discovered{{Name: "EPSON", Kind: printer.ConnectionUSB, VendorID: 1, ProductID: 2}}},
		stubDiscoverer{err: errors.New("no multicast")},
	), reg
}

func TestPrinterService_SmartPrint(t *testing.T) {
	direct := &stubTransport{name: printer.MethodDirectESCPOS}
	svc, _ := newTestService(t, direct)

	res, err := svc.SmartPrint(context.Background(), &PrintInput{Order: TestOrder(time.Now())})
	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.Equal(t, printer.MethodDirectESCPOS, res.Attempt.Succeeded)
	require.Len(t, direct.jobs, 1)
	assert.Equal(t, byte(0x1B), direct.jobs[0].Payload[0])
}

func TestPrinterService_SmartPrintErrors(t *testing.T) {
	failing := &stubTransport{name: printer.MethodDirectESCPOS, err: errors.New("refused")}
	svc, _ := newTestService(t, failing, &stubTransport{name: printer.MethodDialog, err: errors.New("no display")})

	t.Run("exhausted", func(t *testing.T) {
		_, err := svc.SmartPrint(context.Background(), &PrintInput{Content: "hello"})
		appErr := apperror.GetAppError(err)
		assert.Equal(t, http.StatusBadGateway, appErr.Code)
		require.Len(t, appErr.Errors, 2)
		assert.Equal(t, "direct-escpos", appErr.Errors[0].Field)
		assert.Equal(t, "failed: refused", appErr.Errors[0].Message)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.SmartPrint(context.Background(), &PrintInput{Content: "  "})
		assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
	})

	t.Run("unknown printer", func(t *testing.T) {
		_, err := svc.SmartPrint(context.Background(), &PrintInput{Content: "x", Options: printer.Options{PrinterID: "nope"}})
		assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	})
}

func TestPrinterService_GetStatus(t *testing.T) {
	direct := &stubTransport{name: printer.MethodDirectESCPOS}
	dialog := &stubTransport{name: printer.MethodDialog, probe: printer.ErrUnsupported}
	svc, reg := newTestService(t, direct, dialog)

	status, err := svc.GetStatus(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Equal(t, "Counter", status.Printer.Name)
	assert.Equal(t, []printer.Method{printer.MethodDirectESCPOS, printer.MethodDialog}, status.Methods)

	direct.probe = errors.New("timeout")
	status, err = svc.GetStatus(context.Background(), reg.List()[0].ID.String())
	require.NoError(t, err)
	assert.False(t, status.Connected)
	require.Len(t, status.Probes, 1)
	assert.Equal(t, "timeout", status.Probes[0].Error)

	_, err = svc.GetStatus(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestPrinterService_TestPrint(t *testing.T) {
	dialog := &stubTransport{name: printer.MethodDialog}
	svc, _ := newTestService(t, dialog)

	res, err := svc.TestPrint(context.Background(), printer.Options{})
	require.NoError(t, err)
	assert.True(t, res.Printed)
	require.Len(t, dialog.jobs, 1)
	assert.Contains(t, dialog.jobs[0].Text, "Test Item 1")
	assert.Contains(t, dialog.jobs[0].HTML, "Receipt #TEST-001")
}

func TestPrinterService_Preview(t *testing.T) {
	dialog := &stubTransport{name: printer.MethodDialog}
	svc, _ := newTestService(t, dialog)

	res, err := svc.Preview(&PrintInput{Order: TestOrder(time.Now()), Options: printer.Options{DynamicHeight: true}})
	require.NoError(t, err)
	assert.Empty(t, dialog.jobs, "preview never prints")
	assert.Contains(t, res.Text, "Test Item 2 (Half)")
	assert.NotContains(t, res.HTML, "window.print")
	assert.Equal(t, 79.5, res.WidthMM)
	assert.Equal(t, receipt.EstimateHeight(TestOrder(time.Now()), nil), res.HeightMM)
}

func TestPrinterService_Discover(t *testing.T) {
	svc, _ := newTestService(t)

	res := svc.Discover(context.Background())
	require.Len(t, res.Printers, 1)
	assert.Equal(t, "EPSON", res.Printers[0].Name)
	assert.Equal(t, []string{"no multicast"}, res.Errors)
}
