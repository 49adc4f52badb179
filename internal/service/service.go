package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hqin77/lifepath/internal/narrative"
	store "github.com/hqin77/lifepath/internal/repository"
	"github.com/hqin77/lifepath/policy"
)

// Service owns the run lifecycle: creating runs, advancing manual runs one
// day at a time, projecting auto runs in full, and ending runs with a
// summary. It coordinates the projection engine, the narrative generator
// and the persistence layer.
type Service struct {
	store  store.Store
	gen    *narrative.Generator
	policy *policy.Engine
	log    *slog.Logger

	now   func() time.Time
	newID func(prefix string) string
}

func New(st store.Store, gen *narrative.Generator, pol *policy.Engine, log *slog.Logger) *Service {
	return &Service{
		store:  st,
		gen:    gen,
		policy: pol,
		log:    log,
		now:    time.Now,
		newID:  shortID,
	}
}

func shortID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}
