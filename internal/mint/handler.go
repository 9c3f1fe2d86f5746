package mint

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/consensuslabs/pavilion-mint/internal/auth"
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/intake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DetailsRequest sets the asset name and description
type DetailsRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Handler handles HTTP requests for mint sessions
type Handler struct {
	service         *Service
	responseHandler ResponseHandler
	logger          Logger
}

// NewHandler creates a new mint handler instance
func NewHandler(service *Service, responseHandler ResponseHandler, logger Logger) *Handler {
	return &Handler{
		service:         service,
		responseHandler: responseHandler,
		logger:          logger,
	}
}

// RegisterRoutes registers the view and session routes under group. The
// group must run auth.WalletMiddleware.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/view", h.handleView)

	sessions := group.Group("/sessions", auth.RequireWallet(h.responseHandler))
	{
		sessions.POST("", h.handleOpen)
		sessions.GET("/:id", h.handleGet)
		sessions.GET("/:id/timeline", h.handleTimeline)
		sessions.POST("/:id/file", h.handleSelectFile)
		sessions.PUT("/:id/details", h.handleSetDetails)
		sessions.POST("/:id/create", h.handleCreate)
		sessions.DELETE("/:id", h.handleClose)
	}
}

func (h *Handler) handleView(c *gin.Context) {
	if _, ok := auth.GetWalletAddress(c); !ok {
		h.responseHandler.SuccessResponse(c, NoWalletView(), apperrors.ErrMsgWalletRequired)
		return
	}
	h.responseHandler.SuccessResponse(c, EmptyView(), "")
}

func (h *Handler) handleOpen(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)
	view, err := h.service.Open(c.Request.Context(), wallet)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.CreatedResponse(c, view, "Session opened")
}

func (h *Handler) handleGet(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), id, wallet)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, view, "")
}

func (h *Handler) handleTimeline(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}
	timeline, err := h.service.Timeline(c.Request.Context(), id, wallet)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, timeline, "")
}

func (h *Handler) handleSelectFile(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["video"]
	}

	view, err := h.service.SelectFile(c.Request.Context(), id, wallet, files)
	if rejected, ok := intake.IsRejected(err); ok && rejected.Silent {
		h.logger.WithSessionID(id.String()).LogInfo("Ignored dropped files", map[string]interface{}{
			"reason": rejected.Reason,
		})
		h.handleGetAfterIgnore(c, id, wallet)
		return
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, view, "File selected")
}

// handleGetAfterIgnore answers a silently rejected drop with the unchanged view
func (h *Handler) handleGetAfterIgnore(c *gin.Context, id uuid.UUID, wallet string) {
	view, err := h.service.Get(c.Request.Context(), id, wallet)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, view, "")
}

func (h *Handler) handleSetDetails(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responseHandler.ValidationErrorResponse(c, "body", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.responseHandler.ValidationErrorResponse(c, "name", "Name is required")
		return
	}

	view, err := h.service.SetDetails(c.Request.Context(), id, wallet, req.Name, req.Description)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, view, "")
}

func (h *Handler) handleCreate(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}
	view, err := h.service.Create(c.Request.Context(), id, wallet)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, view, "Creating asset")
}

func (h *Handler) handleClose(c *gin.Context) {
	id, wallet, ok := h.sessionParams(c)
	if !ok {
		return
	}
	if err := h.service.Close(c.Request.Context(), id, wallet); err != nil {
		h.handleError(c, err)
		return
	}
	h.responseHandler.SuccessResponse(c, nil, "Session closed")
}

func (h *Handler) sessionParams(c *gin.Context) (uuid.UUID, string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.responseHandler.ValidationErrorResponse(c, "id", "Invalid session ID")
		return uuid.Nil, "", false
	}
	wallet, _ := auth.GetWalletAddress(c)
	return id, wallet, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.Is(err, ErrWalletRequired):
		h.responseHandler.UnauthorizedResponse(c, apperrors.ErrMsgWalletRequired)
	case errors.Is(err, ErrSessionNotFound):
		h.responseHandler.NotFoundResponse(c, apperrors.ErrMsgSessionNotFound)
	case errors.Is(err, ErrInvalidState):
		h.responseHandler.ConflictResponse(c, apperrors.ErrMsgInvalidTransition)
	case errors.Is(err, ErrShuttingDown):
		h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, intake.ErrNoFile):
		h.responseHandler.ValidationErrorResponse(c, "video", err.Error())
	case errors.As(err, &validationErr):
		h.responseHandler.ValidationErrorResponse(c, validationErr.Field, validationErr.Message)
	default:
		if rejected, ok := intake.IsRejected(err); ok {
			h.responseHandler.ValidationErrorResponse(c, "video", rejected.Reason)
			return
		}
		h.responseHandler.InternalErrorResponse(c, "Failed to process request", err)
	}
}
