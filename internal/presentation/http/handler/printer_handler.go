package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/application/service"
	"github.com/sangkips/receipt-print-api/internal/infrastructure/events"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipt-print-api/pkg/printer"
)

// PrinterHandler handles printing HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
	hub            *events.Hub
	logger         *zap.Logger
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService, hub *events.Hub, logger *zap.Logger) *PrinterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterHandler{printerService: printerService, hub: hub, logger: logger}
}

// GetStatus reports whether the default printer, or ?printer_id=, is reachable.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status, err := h.printerService.GetStatus(c.Request.Context(), c.Query("printer_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page through the normal fallback chain.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	var req request.TestPrintRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}
	method, err := printer.ParseMethod(req.Method)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.printerService.TestPrint(c.Request.Context(), printer.Options{Method: method, PrinterID: req.PrinterID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Test page sent to printer", result)
}

// PrintReceipt formats and prints an order, or prints pre-formatted content.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	input, ok := bindPrintInput(c)
	if !ok {
		return
	}

	result, err := h.printerService.SmartPrint(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("Receipt printed",
		zap.String("job_id", result.Attempt.JobID),
		zap.String("method", string(result.Attempt.Succeeded)),
		zap.String("terminal_id", GetTerminalID(c)),
		zap.String("terminal_name", GetTerminalName(c)),
	)
	response.OK(c, "Receipt printed via "+string(result.Attempt.Succeeded), result)
}

// Preview renders a receipt without printing it.
func (h *PrinterHandler) Preview(c *gin.Context) {
	input, ok := bindPrintInput(c)
	if !ok {
		return
	}

	result, err := h.printerService.Preview(input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt preview rendered", result)
}

// Discover scans USB and the local network for printers.
func (h *PrinterHandler) Discover(c *gin.Context) {
	response.OK(c, "Printer discovery finished", h.printerService.Discover(c.Request.Context()))
}

// Events streams print attempt logs over a WebSocket.
func (h *PrinterHandler) Events(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request, GetTerminalID(c)); err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
	}
}

func bindPrintInput(c *gin.Context) (*service.PrintInput, bool) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return nil, false
	}

	opts, err := req.Options.ToOptions()
	if err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}
	return &service.PrintInput{
		Content:  req.Content,
		Options:  opts,
		Order:    req.Order,
		Business: req.Business,
	}, true
}
