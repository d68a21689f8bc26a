package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inovacc/gitboard/internal/application"

	"gopkg.in/ini.v1"
)

// Config holds the application configuration
type Config struct {
	// ServerPort is the port for the HTTP server
	ServerPort int `json:"server_port"`

	// StoreBackend selects the local store implementation ("sqlite" or "bolt")
	StoreBackend string `json:"store_backend"`

	// StorePath is the path to the local store file
	StorePath string `json:"store_path"`

	// Token is the GitHub API token used by the mirror clients
	Token string `json:"-"`

	// MirrorTimeout bounds each per-repository fetch during a merged read
	MirrorTimeout time.Duration `json:"mirror_timeout"`

	// Repositories is the ordered mirror list; the first entry is the
	// default write target
	Repositories []RepositoryConfig `json:"repositories"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	appDir, err := application.GetApplicationDirectory()
	if err != nil {
		appDir = "."
	}

	return Config{
		ServerPort:    8000,
		StoreBackend:  "sqlite",
		StorePath:     filepath.Join(appDir, application.AppName+".db"),
		MirrorTimeout: 10 * time.Second,
	}
}

// DefaultConfigPath returns the path of the settings file.
func DefaultConfigPath() string {
	appDir, err := application.GetApplicationDirectory()
	if err != nil {
		appDir = "."
	}

	return filepath.Join(appDir, "config.ini")
}

// LoadConfig reads the settings file at path, falling back to defaults for
// anything absent. A missing file yields the defaults. The GITHUB_TOKEN
// environment variable overrides the token from the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		f, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading settings file: %w", err)
		}

		server := f.Section("server")
		cfg.ServerPort = server.Key("port").MustInt(cfg.ServerPort)

		storeSec := f.Section("store")
		cfg.StoreBackend = storeSec.Key("backend").MustString(cfg.StoreBackend)
		cfg.StorePath = storeSec.Key("path").MustString(cfg.StorePath)

		cfg.Token = f.Section("github").Key("token").String()
		cfg.MirrorTimeout = f.Section("mirror").Key("timeout").MustDuration(cfg.MirrorTimeout)

		repos, err := parseRepositorySections(f)
		if err != nil {
			return nil, err
		}

		cfg.Repositories = repos
	}

	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		cfg.Token = tok
	}

	switch cfg.StoreBackend {
	case "sqlite", "bolt":
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return &cfg, nil
}

// parseRepositorySections extracts `[repository "owner/name"]` sections in
// file order. File order defines the default write target.
func parseRepositorySections(f *ini.File) ([]RepositoryConfig, error) {
	var repos []RepositoryConfig

	for _, sec := range f.Sections() {
		name := sec.Name()
		if !strings.HasPrefix(name, `repository "`) || !strings.HasSuffix(name, `"`) {
			continue
		}

		full := name[len(`repository "`) : len(name)-1]

		owner, repo, ok := strings.Cut(full, "/")
		if !ok || owner == "" || repo == "" {
			return nil, fmt.Errorf("invalid repository section %q: want owner/name", full)
		}

		repos = append(repos, RepositoryConfig{
			Owner:       owner,
			Name:        repo,
			Branch:      sec.Key("branch").MustString("main"),
			MessagePath: sec.Key("message_path").MustString("messages"),
		})
	}

	return repos, nil
}
