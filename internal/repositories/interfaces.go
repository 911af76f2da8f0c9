package repositories

import (
	"context"

	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

// RunRepository persists finished simulation runs for downstream analysis.
// The core never reads them back; this is a write-only export surface.
type RunRepository interface {
	SaveRun(ctx context.Context, result models.RunResult) error
	Close()
}
