package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sangkips/receipt-print-api/internal/config"
	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/enum"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.PrinterConfig{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultPrinter registers the printer described by PRINTER_TYPE when no
// printer has been configured yet. Type "none" seeds nothing.
func SeedDefaultPrinter(ctx context.Context, db *gorm.DB, cfg *config.PrinterConfig, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.PrinterConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	p := entity.PrinterConfig{Name: "Default printer", IsDefault: true, PaperWidthMM: 79.5}
	switch cfg.Type {
	case "usb":
		if cfg.USBPath == "" {
			return fmt.Errorf("PRINTER_USB_PATH is required for USB printer")
		}
		p.ConnectionType = enum.ConnectionTypeUSB
		p.DevicePath = cfg.USBPath
	case "network":
		if cfg.Address == "" {
			return fmt.Errorf("PRINTER_ADDRESS is required for network printer")
		}
		p.ConnectionType = enum.ConnectionTypeNetwork
		p.Address, p.Port, p.Protocol = splitAddress(cfg.Address)
	case "system":
		p.ConnectionType = enum.ConnectionTypeSystem
	case "", "none":
		return nil
	default:
		return fmt.Errorf("unknown printer type: %s (use usb, network, system, or none)", cfg.Type)
	}

	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return err
	}
	log.Info("Seeded default printer", zap.String("printer_id", p.ID.String()), zap.String("type", cfg.Type))
	return nil
}

// splitAddress accepts "host", "host:port" or "raw://host:port".
func splitAddress(addr string) (host string, port int, protocol string) {
	protocol = "http"
	if rest, ok := strings.CutPrefix(addr, "raw://"); ok {
		protocol, addr = "raw", rest
	} else {
		addr = strings.TrimPrefix(addr, "http://")
	}
	host = addr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		fmt.Sscanf(addr[i+1:], "%d", &port)
		if port > 0 {
			host = addr[:i]
		}
	}
	return host, port, protocol
}
