package auth

import (
	"errors"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for wallet endpoints
type Handler struct {
	service         *Service
	responseHandler ResponseHandler
}

// NewHandler creates a new auth handler instance
func NewHandler(service *Service, responseHandler ResponseHandler) *Handler {
	return &Handler{
		service:         service,
		responseHandler: responseHandler,
	}
}

// RegisterRoutes registers the wallet routes under group
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	wallet := group.Group("/wallet")
	{
		wallet.POST("/challenge", h.handleChallenge)
		wallet.POST("/connect", h.handleConnect)
	}
}

func (h *Handler) handleChallenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responseHandler.ValidationErrorResponse(c, "address", "Wallet address is required")
		return
	}

	challenge, err := h.service.Challenge(c.Request.Context(), req.Address)
	if err != nil {
		h.responseHandler.ValidationErrorResponse(c, "address", err.Error())
		return
	}

	h.responseHandler.SuccessResponse(c, challenge, "Sign this message to connect your wallet")
}

func (h *Handler) handleConnect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responseHandler.ValidationErrorResponse(c, "request", "Invalid request format")
		return
	}

	response, err := h.service.Connect(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrChallengeMissing) || errors.Is(err, ErrSignatureMismatch) {
			h.responseHandler.UnauthorizedResponse(c, err.Error())
			return
		}
		h.responseHandler.ErrorResponse(c, stdhttp.StatusBadRequest, "WALLET_ERROR", err.Error(), err)
		return
	}

	h.responseHandler.SuccessResponse(c, response, "Wallet connected")
}
