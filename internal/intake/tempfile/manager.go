package tempfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/google/uuid"
)

// Manager handles temporary upload directories
type Manager struct {
	baseDir     string
	activeDirs  map[string]string
	logger      logger.Logger
	mu          sync.RWMutex
	permissions os.FileMode
}

// Config represents the configuration for the temporary file manager
type Config struct {
	BaseDir     string
	Permissions os.FileMode
}

// NewManager creates a new temporary file manager
func NewManager(config *Config, logger logger.Logger) (*Manager, error) {
	perm := config.Permissions
	if perm == 0 {
		perm = 0o755
	}
	if err := os.MkdirAll(config.BaseDir, perm); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Manager{
		baseDir:     config.BaseDir,
		activeDirs:  make(map[string]string),
		logger:      logger,
		permissions: perm,
	}, nil
}

// CreateDir creates a new temporary directory for owner and returns its path
func (m *Manager) CreateDir(owner string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath := filepath.Join(m.baseDir, fmt.Sprintf("%s-%s", owner, uuid.New().String()))
	if err := os.MkdirAll(dirPath, m.permissions); err != nil {
		m.logger.LogError(err, fmt.Sprintf("Failed to create temporary directory: path=%s", dirPath))
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	m.activeDirs[dirPath] = owner
	m.logger.LogDebug("Created temporary directory", map[string]interface{}{
		"path":  dirPath,
		"owner": owner,
	})
	return dirPath, nil
}

// CleanupDir removes a temporary directory and its contents
func (m *Manager) CleanupDir(dirPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.activeDirs[dirPath]; !ok {
		return fmt.Errorf("not a managed temporary directory: %s", dirPath)
	}
	return m.remove(dirPath)
}

// CleanupOwner removes every directory created for owner
func (m *Manager) CleanupOwner(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for dirPath, dirOwner := range m.activeDirs {
		if dirOwner != owner {
			continue
		}
		if err := m.remove(dirPath); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// CleanupAll removes all managed temporary directories
func (m *Manager) CleanupAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for dirPath := range m.activeDirs {
		if err := m.remove(dirPath); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to cleanup all temporary directories: %w", lastErr)
	}
	return nil
}

// remove expects m.mu to be held
func (m *Manager) remove(dirPath string) error {
	if err := os.RemoveAll(dirPath); err != nil {
		m.logger.LogError(err, fmt.Sprintf("Failed to cleanup temporary directory: path=%s", dirPath))
		return fmt.Errorf("failed to cleanup temporary directory: %w", err)
	}
	delete(m.activeDirs, dirPath)
	return nil
}

// IsManaged checks if a directory is managed by this manager
func (m *Manager) IsManaged(dirPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.activeDirs[dirPath]
	return ok
}

// GetActiveDirs returns a list of all active temporary directories
func (m *Manager) GetActiveDirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dirs := make([]string, 0, len(m.activeDirs))
	for dir := range m.activeDirs {
		dirs = append(dirs, dir)
	}
	return dirs
}
