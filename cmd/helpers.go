package cmd

import (
	"fmt"
	"log/slog"

	"github.com/inovacc/gitboard/internal/mirror"
	"github.com/inovacc/gitboard/internal/model"
	"github.com/inovacc/gitboard/internal/service"
	"github.com/inovacc/gitboard/internal/store"
)

func loadConfig() (*model.Config, error) {
	return model.LoadConfig(configPath)
}

// newService wires the local store, the mirror registry and the message
// service from cfg. The caller closes the returned store.
func newService(cfg *model.Config, logger *slog.Logger) (*service.MessageService, store.Store, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening local store: %w", err)
	}

	registry := mirror.NewRegistry(cfg.MirrorTimeout, logger)
	for _, repo := range cfg.Repositories {
		registry.Add(mirror.NewGitHubMirror(cfg.Token, repo, logger))
	}

	return service.NewMessageService(st, registry, logger), st, nil
}
