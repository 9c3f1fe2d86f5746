package mint

import (
	"errors"

	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
)

var (
	ErrWalletRequired  = errors.New(apperrors.ErrMsgWalletRequired)
	ErrSessionNotFound = errors.New(apperrors.ErrMsgSessionNotFound)
	ErrInvalidState    = errors.New(apperrors.ErrMsgInvalidTransition)
	ErrFileRequired    = apperrors.NewValidationError("video", "Select a video file to upload.")
	ErrNameRequired    = apperrors.NewValidationError("name", "Name is required")
	ErrShuttingDown    = errors.New("mint service is shutting down")
)
