package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEMsgpack is the content type clients send in Accept to get msgpack bodies
const MIMEMsgpack = "application/msgpack"

// responseHandler implements the ResponseHandler interface
type responseHandler struct {
	logger Logger
}

// NewResponseHandler creates a new instance of ResponseHandler
func NewResponseHandler(logger Logger) ResponseHandler {
	return &responseHandler{
		logger: logger,
	}
}

// SuccessResponse sends a success response with optional data and message
func (h *responseHandler) SuccessResponse(c *gin.Context, data interface{}, message string) {
	h.write(c, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 response
func (h *responseHandler) CreatedResponse(c *gin.Context, data interface{}, message string) {
	h.write(c, http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response with status code, error code, and message
func (h *responseHandler) ErrorResponse(c *gin.Context, status int, code, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}

	h.write(c, status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationErrorResponse sends a validation error response
func (h *responseHandler) ValidationErrorResponse(c *gin.Context, field, message string) {
	h.write(c, http.StatusBadRequest, Response{
		Success: false,
		Error: &Error{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Field:   field,
		},
	})
}

// NotFoundResponse sends a not found error response
func (h *responseHandler) NotFoundResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// UnauthorizedResponse sends an unauthorized error response
func (h *responseHandler) UnauthorizedResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// ConflictResponse sends a conflict error response
func (h *responseHandler) ConflictResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

// InternalErrorResponse sends an internal server error response
func (h *responseHandler) InternalErrorResponse(c *gin.Context, message string, err error) {
	h.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, err)
}

// write negotiates between JSON and msgpack on the Accept header
func (h *responseHandler) write(c *gin.Context, status int, response Response) {
	if c.NegotiateFormat(gin.MIMEJSON, MIMEMsgpack) != MIMEMsgpack {
		c.JSON(status, response)
		return
	}

	data, err := msgpack.Marshal(response)
	if err != nil {
		h.logger.LogError(err, "failed to encode msgpack response")
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   &Error{Code: "INTERNAL_ERROR", Message: "failed to encode msgpack"},
		})
		return
	}
	c.Data(status, MIMEMsgpack, data)
}
