package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/receipt-print-api/pkg/apperror"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta identifies the request and, once paired, the terminal that sent it
type Meta struct {
	Timestamp  string `json:"timestamp"`
	RequestID  string `json:"request_id"`
	TerminalID string `json:"terminal_id,omitempty"`
}

func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &Meta{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  requestID,
		TerminalID: c.GetString("terminal_id"),
	}
}

func write(c *gin.Context, status int, body APIResponse) {
	body.Meta = newMeta(c)
	c.JSON(status, body)
}

// Success sends a success response
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	write(c, statusCode, APIResponse{Success: true, Message: message, Data: data})
}

// Error maps err to its status code. Errors that are not AppErrors become 500s.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	body := APIResponse{Message: appErr.Message}
	if len(appErr.Errors) > 0 {
		body.Errors = appErr.Errors
	}
	write(c, appErr.Code, body)
}

// ErrorWithCode sends an error response with a specific status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	write(c, statusCode, APIResponse{Message: message})
}

// Created sends a 201 Created response
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// OK sends a 200 OK response
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}

// TooManyRequests sends a 429 response; Retry-After is set by the caller
func TooManyRequests(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusTooManyRequests, message)
}
