package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/receipt-print-api/internal/domain/enum"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"gorm.io/gorm"
)

// PrinterConfig is a configured printer and how to reach it
type PrinterConfig struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string              `gorm:"size:100;not null" json:"name"`
	ConnectionType enum.ConnectionType `gorm:"size:20;not null" json:"connection_type"`

	// Network printers
	Address  string `gorm:"size:255" json:"address,omitempty"`
	Port     int    `json:"port,omitempty"`
	Protocol string `gorm:"size:10" json:"protocol,omitempty"` // "http" or "raw"

	// Serial printers
	SerialPort string `gorm:"size:100" json:"serial_port,omitempty"`
	BaudRate   int    `json:"baud_rate,omitempty"`

	// USB printers: vendor/product id, or a device file such as /dev/usb/lp0
	VendorID   uint16 `json:"vendor_id,omitempty"`
	ProductID  uint16 `json:"product_id,omitempty"`
	DevicePath string `gorm:"size:255" json:"device_path,omitempty"`

	// System spooler queue
	Queue string `gorm:"size:100" json:"queue,omitempty"`

	PaperWidthMM float64   `gorm:"default:79.5" json:"paper_width_mm"`
	FixedLength  bool      `gorm:"default:false" json:"fixed_length"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new printer
func (p *PrinterConfig) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PrinterConfig model
func (PrinterConfig) TableName() string {
	return "printer_configs"
}

// ToTarget converts the stored configuration into a print target
func (p *PrinterConfig) ToTarget() *printer.Target {
	return &printer.Target{
		ID:           p.ID.String(),
		Name:         p.Name,
		Kind:         printer.ConnectionKind(p.ConnectionType),
		Address:      p.Address,
		Port:         p.Port,
		Protocol:     p.Protocol,
		SerialPort:   p.SerialPort,
		BaudRate:     p.BaudRate,
		VendorID:     p.VendorID,
		ProductID:    p.ProductID,
		DevicePath:   p.DevicePath,
		Queue:        p.Queue,
		PaperWidthMM: p.PaperWidthMM,
		FixedLength:  p.FixedLength,
	}
}
