package knowledge

import (
	"fmt"

	"go.uber.org/zap"
)

// Config selects and configures a knowledge store backend.
type Config struct {
	// Backend is "chromem" (default) or "qdrant".
	Backend string

	Chromem ChromemConfig
	Qdrant  QdrantConfig
}

// New creates the Store named by cfg.Backend:
//   - "chromem" (default): embedded store, no external services
//   - "qdrant": external Qdrant server over gRPC
func New(cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "chromem", "":
		return NewChromemStore(cfg.Chromem, logger)
	case "qdrant":
		return NewQdrantStore(cfg.Qdrant, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported backend %q (supported: chromem, qdrant)", ErrInvalidConfig, cfg.Backend)
	}
}
