package ipfs

import (
	"context"
	"fmt"

	"github.com/consensuslabs/pavilion-mint/internal/storage"
	shell "github.com/ipfs/go-ipfs-api"
)

// Service pins exported assets on a local IPFS node
type Service struct {
	shell  *shell.Shell
	logger storage.Logger
}

// NewService creates a new IPFS service instance
func NewService(cfg *storage.IPFSConfig, logger storage.Logger) *Service {
	return &Service{
		shell:  shell.NewShell(cfg.APIAddress),
		logger: logger,
	}
}

// Pin fetches cid from the network and pins it on the local node
func (s *Service) Pin(ctx context.Context, cid string) error {
	done := make(chan error, 1)
	go func() {
		done <- s.shell.Pin(cid)
	}()

	select {
	case err := <-done:
		if err != nil {
			return storage.NewStorageError(fmt.Sprintf("failed to pin %s", cid), err)
		}
		s.logger.LogInfo("Pinned asset on local IPFS node", map[string]interface{}{
			"cid": cid,
		})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsUp reports whether the node API answers
func (s *Service) IsUp() bool {
	return s.shell.IsUp()
}

// Close is a no-op; the shell holds no long-lived connection
func (s *Service) Close() error {
	return nil
}

var _ storage.Mirror = (*Service)(nil)
