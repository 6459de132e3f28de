package handler

import (
	"github.com/gin-gonic/gin"
)

// GetTerminalID extracts the paired terminal's ID from the Gin context
func GetTerminalID(c *gin.Context) string {
	return c.GetString("terminal_id")
}

// GetTerminalName extracts the paired terminal's display name from the Gin context
func GetTerminalName(c *gin.Context) string {
	return c.GetString("terminal_name")
}
