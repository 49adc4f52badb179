// Package store persists simulation runs and their timeline nodes.
package store

import (
	"context"

	"github.com/hqin77/lifepath/internal/domain"
)

// Store is the persistence boundary for runs and nodes. Implementations
// must serialize writes per run: appending two nodes with the same
// (run_id, seq) must fail for one of the writers.
type Store interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	ListRuns(ctx context.Context, ownerID string, limit int) ([]domain.Run, error)
	UpdateRunTitle(ctx context.Context, runID, title string) error
	UpdateRunProgress(ctx context.Context, runID string, currentDay int, latest domain.Metrics) error
	UpdateRunEnded(ctx context.Context, runID string, summary *domain.RunSummary) error

	CreateNode(ctx context.Context, node *domain.Node) error
	CreateNodes(ctx context.Context, nodes []domain.Node) error
	GetLatestNode(ctx context.Context, runID string) (*domain.Node, error)
	GetNodes(ctx context.Context, runID string, limit int) ([]domain.Node, error)

	Close() error
}
