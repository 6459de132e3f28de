package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/enum"
	"github.com/sangkips/receipt-print-api/internal/domain/repository"
	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// PrinterRegistry is the in-memory set of configured printers. It is loaded
// with Init, changed through Add/Update/Remove/SetDefault and written back
// with Persist. When any printer exists exactly one of them is the default.
type PrinterRegistry struct {
	repo   repository.PrinterRepository
	logger *zap.Logger

	mu       sync.RWMutex
	printers []entity.PrinterConfig

	// persistMu orders writes to the repository; each one snapshots the
	// set while holding it so a later save never carries older state
	persistMu sync.Mutex
}

// NewPrinterRegistry creates an empty registry backed by repo
func NewPrinterRegistry(repo repository.PrinterRepository, logger *zap.Logger) *PrinterRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterRegistry{repo: repo, logger: logger}
}

// Init replaces the in-memory set with what the repository holds
func (r *PrinterRegistry) Init(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load printers: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })

	r.mu.Lock()
	r.printers = list
	r.ensureDefault()
	r.mu.Unlock()

	r.logger.Info("Printer registry loaded", zap.Int("printers", len(list)))
	return nil
}

// Persist writes the in-memory set to the repository
func (r *PrinterRegistry) Persist(ctx context.Context) error {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.RLock()
	snapshot := append([]entity.PrinterConfig(nil), r.printers...)
	r.mu.RUnlock()

	if err := r.repo.SaveAll(ctx, snapshot); err != nil {
		return fmt.Errorf("save printers: %w", err)
	}
	return nil
}

// List returns a copy of every configured printer, oldest first
func (r *PrinterRegistry) List() []entity.PrinterConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.PrinterConfig(nil), r.printers...)
}

// Lookup returns a copy of the printer with the given id
func (r *PrinterRegistry) Lookup(id string) (*entity.PrinterConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		p := r.printers[i]
		return &p, true
	}
	return nil, false
}

// Get resolves a printer id to a print target
func (r *PrinterRegistry) Get(id string) (*printer.Target, bool) {
	p, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	return p.ToTarget(), true
}

// Default returns the default printer's target, if any printer is configured
func (r *PrinterRegistry) Default() (*printer.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.printers {
		if r.printers[i].IsDefault {
			return r.printers[i].ToTarget(), true
		}
	}
	return nil, false
}

// Add registers a new printer. The first printer becomes the default.
func (r *PrinterRegistry) Add(p entity.PrinterConfig) (*entity.PrinterConfig, error) {
	if err := ValidatePrinter(&p); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if p.PaperWidthMM <= 0 {
		p.PaperWidthMM = receipt.PaperWidthMM
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(p.ID.String()) >= 0 {
		return nil, apperror.NewConflictError("Printer already exists")
	}
	if p.IsDefault {
		r.clearDefault()
	}
	r.printers = append(r.printers, p)
	r.ensureDefault()

	out := r.printers[len(r.printers)-1]
	return &out, nil
}

// Update replaces a printer's settings. The id, creation time and default
// flag are kept; use SetDefault to move the default.
func (r *PrinterRegistry) Update(id string, p entity.PrinterConfig) (*entity.PrinterConfig, error) {
	if err := ValidatePrinter(&p); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, apperror.NewNotFoundError("Printer")
	}
	cur := r.printers[i]
	p.ID, p.CreatedAt, p.IsDefault = cur.ID, cur.CreatedAt, cur.IsDefault
	p.UpdatedAt = time.Now().UTC()
	if p.PaperWidthMM <= 0 {
		p.PaperWidthMM = cur.PaperWidthMM
	}
	r.printers[i] = p

	out := p
	return &out, nil
}

// Remove deletes a printer. Removing the default promotes the oldest remaining printer.
func (r *PrinterRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return apperror.NewNotFoundError("Printer")
	}
	r.printers = append(r.printers[:i], r.printers[i+1:]...)
	r.ensureDefault()
	return nil
}

// SetDefault makes id the only default printer
func (r *PrinterRegistry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return apperror.NewNotFoundError("Printer")
	}
	r.clearDefault()
	r.printers[i].IsDefault = true
	r.printers[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *PrinterRegistry) indexOf(id string) int {
	for i := range r.printers {
		if r.printers[i].ID.String() == id {
			return i
		}
	}
	return -1
}

func (r *PrinterRegistry) clearDefault() {
	for i := range r.printers {
		r.printers[i].IsDefault = false
	}
}

// ensureDefault keeps exactly one default: the first flagged one, or the oldest printer.
func (r *PrinterRegistry) ensureDefault() {
	found := false
	for i := range r.printers {
		if r.printers[i].IsDefault {
			if found {
				r.printers[i].IsDefault = false
			}
			found = true
		}
	}
	if !found && len(r.printers) > 0 {
		r.printers[0].IsDefault = true
	}
}

// ValidatePrinter checks that a printer's connection descriptor is complete
func ValidatePrinter(p *entity.PrinterConfig) error {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		add("name", "Name is required")
	}
	if !p.ConnectionType.IsValid() {
		add("connection_type", "Connection type must be one of network, serial, usb, system, browser")
	}
	if p.Port < 0 || p.Port > 65535 {
		add("port", "Port must be between 1 and 65535")
	}

	switch p.ConnectionType {
	case enum.ConnectionTypeNetwork:
		if strings.TrimSpace(p.Address) == "" {
			add("address", "Address is required for network printers")
		}
		switch p.Protocol {
		case "":
			p.Protocol = printer.ProtocolHTTP
		case printer.ProtocolHTTP, printer.ProtocolRaw:
		default:
			add("protocol", "Protocol must be http or raw")
		}
	case enum.ConnectionTypeSerial:
		if p.SerialPort == "" {
			add("serial_port", "Serial port is required for serial printers")
		}
		if p.BaudRate < 0 {
			add("baud_rate", "Baud rate must be positive")
		}
	case enum.ConnectionTypeUSB:
		if p.DevicePath == "" && (p.VendorID == 0 || p.ProductID == 0) {
			add("vendor_id", "Vendor and product id, or a device path, are required for USB printers")
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
