package repository

import (
	"context"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
)

// PrinterRepository defines persistence for configured printers. The
// registry owns the set, so the store is read whole and written whole.
type PrinterRepository interface {
	// List returns every printer, oldest first
	List(ctx context.Context) ([]entity.PrinterConfig, error)
	// SaveAll replaces the stored set with printers in one transaction
	SaveAll(ctx context.Context, printers []entity.PrinterConfig) error
}
