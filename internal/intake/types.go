package intake

import (
	"errors"
	"fmt"
)

// Config holds upload limits
type Config struct {
	MaxSize        int64
	AllowedFormats []string
	MinNameLength  int
	MaxNameLength  int
	MaxDescLength  int
}

// File is an accepted upload stored on local disk
type File struct {
	Name        string
	Path        string
	Dir         string
	Size        int64
	ContentType string
}

// ErrNoFile is returned when the upload carried no file
var ErrNoFile = errors.New("video file is required")

// RejectedError explains why an upload was not accepted. Silent rejections
// mirror a dropzone ignoring the drop and leave the session untouched.
type RejectedError struct {
	Reason string
	Silent bool
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("file rejected: %s", e.Reason)
}

// IsRejected reports whether err is a RejectedError
func IsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
