// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed contents
// are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Recognized key files.
const (
	AnthropicAPIKey = "anthropic-api-key"
	RedisPassword   = "redis-password"
)

// DefaultDir is where the CLI looks for secrets.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Dotfiles, subdirectories,
// and empty files are skipped; unreadable files are logged and skipped.
func Load(dir string, log *logging.Logger) (map[string]string, error) {
	if log == nil {
		log = logging.Nop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Apply copies recognized secrets into cfg where the configuration left the
// field empty. Values set by file or environment win.
func Apply(cfg *types.Config, s map[string]string) {
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = s[AnthropicAPIKey]
	}
	if cfg.Research.Cache.RedisPassword == "" {
		cfg.Research.Cache.RedisPassword = s[RedisPassword]
	}
}
