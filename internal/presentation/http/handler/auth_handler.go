package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/receipt-print-api/internal/application/service"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
)

// AuthHandler handles terminal pairing
type AuthHandler struct {
	authService *service.TerminalAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.TerminalAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// PairTerminal exchanges the pairing code for a terminal token
// @Summary Pair terminal
// @Description Exchange the shop's pairing code for a terminal access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.PairTerminalRequest true "Pairing code"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/terminal [post]
func (h *AuthHandler) PairTerminal(c *gin.Context) {
	var req request.PairTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Pair(c.Request.Context(), &service.PairInput{
		PairingCode:  req.PairingCode,
		TerminalName: req.TerminalName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Terminal paired", gin.H{
		"terminal_id":  output.TerminalID,
		"access_token": output.AccessToken,
		"expires_at":   output.ExpiresAt,
		"token_type":   "Bearer",
	})
}
