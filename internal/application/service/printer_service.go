package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// PrinterService is the entry point POS terminals print through.
type PrinterService struct {
	orchestrator *printer.Orchestrator
	registry     *PrinterRegistry
	discoverers  []printer.Discoverer
	logger       *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	orchestrator *printer.Orchestrator,
	registry *PrinterRegistry,
	logger *zap.Logger,
	discoverers ...printer.Discoverer,
) *PrinterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterService{
		orchestrator: orchestrator,
		registry:     registry,
		discoverers:  discoverers,
		logger:       logger,
	}
}

// PrintInput is one smartPrint call.
type PrintInput struct {
	Content  string
	Options  printer.Options
	Order    *receipt.Order
	Business *receipt.BusinessProfile
}

// PrintResult reports which transport delivered the receipt.
type PrintResult struct {
	Printed bool             `json:"printed"`
	Attempt *printer.Attempt `json:"attempt"`
}

// SmartPrint formats, encodes and prints a receipt, falling back across
// transports. It fails only when every transport failed.
func (s *PrinterService) SmartPrint(ctx context.Context, in *PrintInput) (*PrintResult, error) {
	attempt, err := s.orchestrator.Print(ctx, printer.Request{
		Content:  in.Content,
		Options:  in.Options,
		Order:    in.Order,
		Business: in.Business,
	})
	if err != nil {
		return nil, mapPrintError(err)
	}
	return &PrintResult{Printed: attempt.Success(), Attempt: attempt}, nil
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool                  `json:"configured"`
	Connected  bool                  `json:"connected"`
	Printer    *entity.PrinterConfig `json:"printer,omitempty"`
	Methods    []printer.Method      `json:"methods"`
	Probes     []printer.ProbeResult `json:"probes,omitempty"`
}

// GetStatus probes the given printer, or the default one when printerID is empty.
func (s *PrinterService) GetStatus(ctx context.Context, printerID string) (*PrinterStatus, error) {
	status := &PrinterStatus{Methods: s.orchestrator.Methods()}

	var cfg *entity.PrinterConfig
	if printerID != "" {
		p, ok := s.registry.Lookup(printerID)
		if !ok {
			return nil, apperror.NewNotFoundError("Printer")
		}
		cfg = p
	} else if t, ok := s.registry.Default(); ok {
		cfg, _ = s.registry.Lookup(t.ID)
	}
	if cfg == nil {
		return status, nil
	}

	status.Configured = true
	status.Printer = cfg
	status.Probes = s.orchestrator.Probe(ctx, cfg.ToTarget())
	for _, p := range status.Probes {
		if p.Reachable {
			status.Connected = true
			break
		}
	}
	return status, nil
}

// TestPrint sends a fixed test receipt through the normal print path.
func (s *PrinterService) TestPrint(ctx context.Context, opts printer.Options) (*PrintResult, error) {
	return s.SmartPrint(ctx, &PrintInput{Options: opts, Order: TestOrder(time.Now())})
}

// TestOrder is the receipt printed by TestPrint.
func TestOrder(now time.Time) *receipt.Order {
	return &receipt.Order{
		ID:          "test",
		OrderNumber: "TEST-001",
		Items: []receipt.Item{
			{Name: "Test Item 1", Price: 10, Quantity: 1},
			{Name: "Test Item 2", Price: 5, Quantity: 2, PortionSize: "Half"},
		},
		Subtotal:      20,
		CGSTAmount:    0.5,
		SGSTAmount:    0.5,
		Total:         21,
		PaymentMethod: "Cash",
		TableNames:    []string{"T1"},
		CreatedAt:     now,
	}
}

// PreviewResult is a rendered receipt that was not sent anywhere.
type PreviewResult struct {
	Text     string  `json:"text"`
	HTML     string  `json:"html"`
	WidthMM  float64 `json:"width_mm"`
	HeightMM int     `json:"height_mm"`
}

// Preview renders a receipt exactly as it would be printed.
func (s *PrinterService) Preview(in *PrintInput) (*PreviewResult, error) {
	opts := in.Options
	opts.Preview = true
	job, err := s.orchestrator.BuildJob(printer.Request{
		Content:  in.Content,
		Options:  opts,
		Order:    in.Order,
		Business: in.Business,
	})
	if err != nil {
		return nil, mapPrintError(err)
	}
	return &PreviewResult{
		Text:     job.Text,
		HTML:     job.HTML,
		WidthMM:  job.Paper.WidthMM,
		HeightMM: job.Paper.HeightMM,
	}, nil
}

// DiscoveryResult lists printers found on USB and the local network.
type DiscoveryResult struct {
	Printers []printer.Discovered `json:"printers"`
	Errors   []string             `json:"errors,omitempty"`
}

// Discover scans every configured discoverer. Individual scanner failures are
// reported alongside whatever was found.
func (s *PrinterService) Discover(ctx context.Context) *DiscoveryResult {
	found, errs := printer.DiscoverAll(ctx, s.discoverers...)
	res := &DiscoveryResult{Printers: found}
	if res.Printers == nil {
		res.Printers = []printer.Discovered{}
	}
	for _, err := range errs {
		s.logger.Warn("Printer discovery failed", zap.Error(err))
		res.Errors = append(res.Errors, err.Error())
	}
	return res
}

// mapPrintError turns orchestrator errors into API errors.
func mapPrintError(err error) error {
	var exhausted *printer.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		var fields []apperror.FieldError
		if exhausted.Attempt != nil {
			for _, r := range exhausted.Attempt.Records {
				fields = append(fields, apperror.FieldError{
					Field:   string(r.Transport),
					Message: string(r.Outcome) + ": " + r.Error,
				})
			}
		}
		return apperror.NewBadGatewayError("All print methods failed", fields)
	case errors.Is(err, printer.ErrUnknownPrinter):
		return apperror.NewNotFoundError("Printer")
	case errors.Is(err, printer.ErrEmptyJob):
		return apperror.NewBadRequestError("Nothing to print: provide content or an order")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.NewServiceUnavailableError("Print request cancelled while waiting for the printer")
	}
	return err
}
