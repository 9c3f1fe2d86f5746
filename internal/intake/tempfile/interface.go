package tempfile

// TempFileManager defines the interface for temporary file operations
type TempFileManager interface {
	// CreateDir creates a new temporary directory owned by owner and returns its path
	CreateDir(owner string) (string, error)

	// CleanupDir removes a temporary directory and its contents
	CleanupDir(dirPath string) error

	// CleanupOwner removes every directory created for owner
	CleanupOwner(owner string) error

	// CleanupAll removes all managed temporary directories
	CleanupAll() error

	// IsManaged checks if a directory is managed by this manager
	IsManaged(dirPath string) bool

	// GetActiveDirs returns a list of all active temporary directories
	GetActiveDirs() []string
}
