package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/iatro-health/iatro/internal/explain"
	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/knowledge"
	"github.com/iatro-health/iatro/internal/llm"
	"github.com/iatro-health/iatro/internal/logging"
	"github.com/iatro-health/iatro/internal/store"
)

// resolveDBPath returns the configured database path (--db flag, then
// IATRO_DB or the config file), then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadEngine reads the knowledge base from --kb or the database and builds
// an engine with the configured thresholds. An empty database is seeded
// with the bundled sample knowledge base first.
func loadEngine(ctx context.Context, s *store.Store) (*inference.Engine, error) {
	var provider knowledge.Provider
	if cfg.KB != "" {
		provider = &knowledge.FileProvider{Path: cfg.KB}
	} else {
		repo := s.KnowledgeRepo()
		empty, err := repo.Empty(ctx)
		if err != nil {
			return nil, fmt.Errorf("inspect knowledge base: %w", err)
		}
		if empty {
			res, err := repo.Seed(ctx)
			if err != nil {
				return nil, fmt.Errorf("seed knowledge base: %w", err)
			}
			logging.FromContext(ctx).Info().
				Int("diseases", res.Diseases).
				Int("symptoms", res.Symptoms).
				Msg("database was empty, seeded sample knowledge base")
		}
		provider = repo
	}

	base, err := provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	return inference.NewEngine(base, cfg.Inference, inference.WithLogger(logger))
}

// newExplainer wires the configured LLM provider, if any, into the
// explanation service. Provider errors degrade to static explanations.
func newExplainer(ctx context.Context, s *store.Store) *explain.Service {
	var events store.EventRepo
	var cache store.ExplanationRepo
	if s != nil {
		events, cache = s.EventRepo(), s.ExplanationRepo()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, events, logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		provider = nil
	case err != nil:
		logger.Warn().Err(err).Msg("LLM provider not configured, using built-in explanations")
		provider = nil
	}
	return explain.NewService(provider, cache, explain.DefaultConfig(), logger)
}
