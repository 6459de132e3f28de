package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/application/service"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipt-print-api/pkg/apperror"
	"github.com/sangkips/receipt-print-api/pkg/utils"
)

// PrintersHandler manages configured printers
type PrintersHandler struct {
	registry *service.PrinterRegistry
	logger   *zap.Logger
}

// NewPrintersHandler creates a new printers handler
func NewPrintersHandler(registry *service.PrinterRegistry, logger *zap.Logger) *PrintersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintersHandler{registry: registry, logger: logger}
}

// List returns every configured printer
func (h *PrintersHandler) List(c *gin.Context) {
	response.OK(c, "Printers retrieved", h.registry.List())
}

// Create adds a printer
func (h *PrintersHandler) Create(c *gin.Context) {
	var req request.PrinterConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	p, err := h.registry.Add(req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.persist(c) {
		return
	}
	h.logger.Info("Printer added", zap.String("printer_id", p.ID.String()), zap.String("terminal_id", GetTerminalID(c)))
	response.Created(c, "Printer added", p)
}

// Update replaces a printer's settings
func (h *PrintersHandler) Update(c *gin.Context) {
	id, ok := printerIDParam(c)
	if !ok {
		return
	}
	var req request.PrinterConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	p, err := h.registry.Update(id, req.ToEntity())
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.IsDefault && !p.IsDefault {
		if err := h.registry.SetDefault(id); err != nil {
			response.Error(c, err)
			return
		}
		p.IsDefault = true
	}
	if !h.persist(c) {
		return
	}
	response.OK(c, "Printer updated", p)
}

// Delete removes a printer
func (h *PrintersHandler) Delete(c *gin.Context) {
	id, ok := printerIDParam(c)
	if !ok {
		return
	}
	if err := h.registry.Remove(id); err != nil {
		response.Error(c, err)
		return
	}
	if !h.persist(c) {
		return
	}
	h.logger.Info("Printer removed", zap.String("printer_id", id), zap.String("terminal_id", GetTerminalID(c)))
	response.NoContent(c)
}

// SetDefault makes a printer the default
func (h *PrintersHandler) SetDefault(c *gin.Context) {
	id, ok := printerIDParam(c)
	if !ok {
		return
	}
	if err := h.registry.SetDefault(id); err != nil {
		response.Error(c, err)
		return
	}
	if !h.persist(c) {
		return
	}
	p, _ := h.registry.Lookup(id)
	response.OK(c, "Default printer updated", p)
}

func printerIDParam(c *gin.Context) (string, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid printer ID")
		return "", false
	}
	return id.String(), true
}

// persist saves the registry. On failure the registry is reloaded from
// storage so memory and disk agree.
func (h *PrintersHandler) persist(c *gin.Context) bool {
	ctx := c.Request.Context()
	if err := h.registry.Persist(ctx); err != nil {
		h.logger.Error("Failed to save printers", zap.Error(err))
		if rerr := h.registry.Init(ctx); rerr != nil {
			h.logger.Error("Failed to reload printers", zap.Error(rerr))
		}
		response.Error(c, apperror.ErrInternalServer)
		return false
	}
	return true
}
