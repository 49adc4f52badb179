package service

import (
	"context"
	"strings"

	"github.com/hqin77/lifepath/internal/domain"
)

// Get returns a run with its nodes. nodeLimit <= 0 returns the whole
// timeline.
func (s *Service) Get(ctx context.Context, ownerID, runID string, nodeLimit int) (*domain.RunWithNodes, error) {
	run, err := s.ownedRun(ctx, ownerID, runID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.store.GetNodes(ctx, runID, nodeLimit)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "load nodes for run %s", runID)
	}
	return &domain.RunWithNodes{Run: run, Nodes: nodes}, nil
}

// List returns the caller's runs, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit int) ([]domain.Run, error) {
	runs, err := s.store.ListRuns(ctx, ownerID, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "list runs for %s", ownerID)
	}
	return runs, nil
}

// Rename updates a run's display title. Ended runs can still be renamed.
func (s *Service) Rename(ctx context.Context, ownerID, runID, title string) (*domain.Run, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.E(domain.KindValidation, "title is required")
	}
	if len(title) > maxTitleLen {
		return nil, domain.E(domain.KindValidation, "title exceeds %d characters", maxTitleLen)
	}
	run, err := s.ownedRun(ctx, ownerID, runID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRunTitle(ctx, runID, title); err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "rename run %s", runID)
	}
	run.Title = title
	return run, nil
}

// ownedRun loads a run and enforces ownership. Foreign runs are reported
// as not found, never as forbidden, so run ids cannot be probed.
func (s *Service) ownedRun(ctx context.Context, ownerID, runID string) (*domain.Run, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, err, "load run %s", runID)
	}
	if run == nil || run.OwnerID != ownerID {
		return nil, domain.E(domain.KindNotFound, "run %s not found", runID)
	}
	return run, nil
}
