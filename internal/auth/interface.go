package auth

import (
	"github.com/gin-gonic/gin"
)

// TokenService handles JWT operations
type TokenService interface {
	GenerateAccessToken(address string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// ResponseHandler handles HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
	ValidationErrorResponse(c *gin.Context, field, message string)
	UnauthorizedResponse(c *gin.Context, message string)
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogWarn(message string, fields map[string]interface{})
	LogError(err error, msg string) error
}
