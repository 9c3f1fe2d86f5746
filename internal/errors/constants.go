package errors

// Error message constants
const (
	ErrMsgFileNotFound      = "File not found"
	ErrMsgFileSize          = "File size exceeds maximum allowed size"
	ErrMsgFileType          = "File type not allowed"
	ErrMsgTitleLength       = "Title length must be between min and max length"
	ErrMsgDescLength        = "Description length exceeds maximum allowed length"
	ErrMsgWalletRequired    = "Please connect your wallet"
	ErrMsgProcessingFailed  = "Failed to process video."
	ErrMsgCallNotPrepared   = "Contract call is not prepared"
	ErrMsgSessionNotFound   = "Session not found"
	ErrMsgInvalidTransition = "Operation not allowed in the current session state"
)
