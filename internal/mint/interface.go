package mint

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/consensuslabs/pavilion-mint/internal/chain"
	"github.com/consensuslabs/pavilion-mint/internal/intake"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pipeline is the media pipeline that stores, processes and exports videos
type Pipeline interface {
	CreateAsset(ctx context.Context, name string, body io.Reader, size int64, onProgress func(float64)) (*livepeer.Asset, error)
	GetAsset(ctx context.Context, id string) (*livepeer.Asset, error)
	UpdateAsset(ctx context.Context, id string, req livepeer.UpdateAssetRequest) (*livepeer.Asset, error)
}

// CallPreparer builds the mint call once its arguments exist
type CallPreparer interface {
	Prepare(recipient, tokenURI string) (*chain.PreparedCall, error)
}

// ContractWriter submits a prepared call and returns its transaction hash
type ContractWriter interface {
	Write(ctx context.Context, call *chain.PreparedCall) (string, error)
}

// Intake validates and stores dropped files
type Intake interface {
	Accept(owner string, files []*multipart.FileHeader) (*intake.File, error)
	ValidateDetails(name, description string) error
	Discard(dir string) error
	Release(owner string) error
}

// Mirror pins exported content on a node we control
type Mirror interface {
	Pin(ctx context.Context, cid string) error
}

// Archiver keeps a copy of the original upload
type Archiver interface {
	Archive(ctx context.Context, key, filePath, contentType string) (string, error)
}

// SessionStore persists sessions
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	ListByStates(ctx context.Context, states ...State) ([]*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimelineStore records the transition history of sessions
type TimelineStore interface {
	Append(ctx context.Context, transition Transition) error
	List(ctx context.Context, sessionID string) ([]Transition, error)
}

// Publisher emits workflow events to other services
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Latch is a cross-process at-most-once guard for side effects
type Latch interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// ResponseHandler handles HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	CreatedResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
	ValidationErrorResponse(c *gin.Context, field, message string)
	NotFoundResponse(c *gin.Context, message string)
	UnauthorizedResponse(c *gin.Context, message string)
	ConflictResponse(c *gin.Context, message string)
	InternalErrorResponse(c *gin.Context, message string, err error)
}

// Logger interface for logging operations
type Logger = logger.Logger
