package request

import (
	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/enum"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// PaperSizeRequest overrides the page size in millimetres
type PaperSizeRequest struct {
	WidthMM  float64 `json:"width_mm" binding:"omitempty,gt=0,lte=120"`
	HeightMM int     `json:"height_mm" binding:"omitempty,gt=0"`
}

// PrintOptionsRequest are the smartPrint options
type PrintOptionsRequest struct {
	Method        string            `json:"method"`
	PaperSize     *PaperSizeRequest `json:"paper_size"`
	Copies        int               `json:"copies" binding:"omitempty,min=1,max=10"`
	AutoCut       *bool             `json:"auto_cut"`
	Silent        bool              `json:"silent"`
	Preview       bool              `json:"preview"`
	DynamicHeight bool              `json:"dynamic_height"`
	PrinterID     string            `json:"printer_id" binding:"omitempty,uuid"`
}

// ToOptions converts the request into orchestrator options
func (r *PrintOptionsRequest) ToOptions() (printer.Options, error) {
	if r == nil {
		return printer.Options{}, nil
	}
	method, err := printer.ParseMethod(r.Method)
	if err != nil {
		return printer.Options{}, err
	}
	opts := printer.Options{
		Method:        method,
		Copies:        r.Copies,
		AutoCut:       r.AutoCut,
		Silent:        r.Silent,
		Preview:       r.Preview,
		DynamicHeight: r.DynamicHeight,
		PrinterID:     r.PrinterID,
	}
	if r.PaperSize != nil {
		opts.PaperSize = &receipt.PaperSize{WidthMM: r.PaperSize.WidthMM, HeightMM: r.PaperSize.HeightMM}
	}
	return opts, nil
}

// PrintReceiptRequest is the request body for printing a receipt: either an
// order, which is formatted here, or pre-formatted content.
type PrintReceiptRequest struct {
	Content  string                   `json:"content"`
	Options  *PrintOptionsRequest     `json:"options"`
	Order    *receipt.Order           `json:"order"`
	Business *receipt.BusinessProfile `json:"business"`
}

// TestPrintRequest selects the printer and method for a test page
type TestPrintRequest struct {
	PrinterID string `json:"printer_id" binding:"omitempty,uuid"`
	Method    string `json:"method"`
}

// PrinterConfigRequest creates or updates a configured printer
type PrinterConfigRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=100"`
	ConnectionType string  `json:"connection_type" binding:"required,oneof=network serial usb system browser"`
	Address        string  `json:"address" binding:"max=255"`
	Port           int     `json:"port" binding:"omitempty,min=1,max=65535"`
	Protocol       string  `json:"protocol" binding:"omitempty,oneof=http raw"`
	SerialPort     string  `json:"serial_port" binding:"max=100"`
	BaudRate       int     `json:"baud_rate" binding:"omitempty,min=1200"`
	VendorID       uint16  `json:"vendor_id"`
	ProductID      uint16  `json:"product_id"`
	DevicePath     string  `json:"device_path" binding:"max=255"`
	Queue          string  `json:"queue" binding:"max=100"`
	PaperWidthMM   float64 `json:"paper_width_mm" binding:"omitempty,gt=0,lte=120"`
	FixedLength    bool    `json:"fixed_length"`
	IsDefault      bool    `json:"is_default"`
}

// ToEntity converts the request into a printer configuration
func (r *PrinterConfigRequest) ToEntity() entity.PrinterConfig {
	return entity.PrinterConfig{
		Name:           r.Name,
		ConnectionType: enum.ConnectionType(r.ConnectionType),
		Address:        r.Address,
		Port:           r.Port,
		Protocol:       r.Protocol,
		SerialPort:     r.SerialPort,
		BaudRate:       r.BaudRate,
		VendorID:       r.VendorID,
		ProductID:      r.ProductID,
		DevicePath:     r.DevicePath,
		Queue:          r.Queue,
		PaperWidthMM:   r.PaperWidthMM,
		FixedLength:    r.FixedLength,
		IsDefault:      r.IsDefault,
	}
}
