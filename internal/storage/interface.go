package storage

import "context"

// Mirror pins content the media pipeline exported to IPFS on a node we control
type Mirror interface {
	Pin(ctx context.Context, cid string) error
	IsUp() bool
	Close() error
}

// Archiver keeps a copy of the original upload
type Archiver interface {
	Archive(ctx context.Context, key, filePath, contentType string) (string, error)
	Close() error
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
}
