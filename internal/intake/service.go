package intake

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/intake/tempfile"
	"github.com/gabriel-vasile/mimetype"
)

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
}

// Service validates dropped files and stores accepted ones
type Service struct {
	config   *Config
	tempDirs tempfile.TempFileManager
	logger   Logger
}

// NewService creates a new intake service
func NewService(config *Config, tempDirs tempfile.TempFileManager, logger Logger) *Service {
	return &Service{
		config:   config,
		tempDirs: tempDirs,
		logger:   logger,
	}
}

// Accept takes exactly one video file for owner. More than one file rejects
// them all; content that does not sniff as video is never stored.
func (s *Service) Accept(owner string, files []*multipart.FileHeader) (*File, error) {
	switch {
	case len(files) == 0:
		return nil, ErrNoFile
	case len(files) > 1:
		return nil, &RejectedError{Reason: "only one file can be dropped", Silent: true}
	}
	header := files[0]

	if s.config.MaxSize > 0 && header.Size > s.config.MaxSize {
		return nil, &RejectedError{Reason: apperrors.ErrMsgFileSize}
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if !isVideo(mtype) {
		return nil, &RejectedError{Reason: fmt.Sprintf("%s is not a video", mtype.String()), Silent: true}
	}
	if !s.formatAllowed(mtype.Extension(), header.Filename) {
		return nil, &RejectedError{Reason: apperrors.ErrMsgFileType}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	dir, err := s.tempDirs.CreateDir(owner)
	if err != nil {
		return nil, err
	}

	name := sanitizeName(header.Filename, mtype.Extension())
	path := filepath.Join(dir, name)
	written, err := copyToFile(path, src)
	if err != nil {
		s.tempDirs.CleanupDir(dir)
		return nil, err
	}

	s.logger.LogInfo("Accepted video file", map[string]interface{}{
		"owner":        owner,
		"name":         name,
		"size":         written,
		"content_type": mtype.String(),
	})

	return &File{
		Name:        name,
		Path:        path,
		Dir:         dir,
		Size:        written,
		ContentType: mtype.String(),
	}, nil
}

// ValidateDetails checks the asset name and description lengths
func (s *Service) ValidateDetails(name, description string) error {
	nameLen := utf8.RuneCountInString(strings.TrimSpace(name))
	if nameLen == 0 {
		return apperrors.NewValidationError("name", "Name is required")
	}
	if (s.config.MinNameLength > 0 && nameLen < s.config.MinNameLength) ||
		(s.config.MaxNameLength > 0 && nameLen > s.config.MaxNameLength) {
		return apperrors.NewValidationError("name", apperrors.ErrMsgTitleLength)
	}
	if s.config.MaxDescLength > 0 && utf8.RuneCountInString(description) > s.config.MaxDescLength {
		return apperrors.NewValidationError("description", apperrors.ErrMsgDescLength)
	}
	return nil
}

// Release removes every stored file for owner
func (s *Service) Release(owner string) error {
	return s.tempDirs.CleanupOwner(owner)
}

func isVideo(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			return true
		}
	}
	return false
}

func (s *Service) formatAllowed(detectedExt, filename string) bool {
	if len(s.config.AllowedFormats) == 0 {
		return true
	}
	nameExt := strings.ToLower(filepath.Ext(filename))
	for _, format := range s.config.AllowedFormats {
		format = strings.ToLower(format)
		if !strings.HasPrefix(format, ".") {
			format = "." + format
		}
		if format == detectedExt || format == nameExt {
			return true
		}
	}
	return false
}

func sanitizeName(filename, ext string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload" + ext
	}
	return name
}

func copyToFile(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return written, nil
}

// Discard removes one stored upload directory
func (s *Service) Discard(dir string) error {
	return s.tempDirs.CleanupDir(dir)
}
