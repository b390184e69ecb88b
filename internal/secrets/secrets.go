// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves credentials from a directory of plain-text key
// files and from an optional dotenv file.
//
// In a key directory each file is one secret: the filename is the key name
// and the trimmed contents are the value (e.g. .secrets/perplexity-api-key).
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// PerplexityKeyFile is the key-directory filename holding the research API key.
	PerplexityKeyFile = "perplexity-api-key"

	// PerplexityEnv is the environment and dotenv variable holding the research API key.
	PerplexityEnv = "PERPLEXITY_API_KEY"
)

// placeholders are template values shipped in sample .env files.
var placeholders = map[string]bool{
	"your_api_key_here": true,
	"your_actual_key":   true,
}

// IsPlaceholder reports whether v is empty or one of the known template values.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || placeholders[v]
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error. Unreadable files are logged and skipped.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.WithError(err).Warnf("could not read secret %s", entry.Name())
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vals, nil
}

// Resolve returns the first candidate that is neither empty nor a placeholder,
// and whether any candidate was a placeholder. Candidates are checked in order.
func Resolve(candidates ...string) (value string, sawPlaceholder bool) {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if placeholders[c] {
			sawPlaceholder = true
			continue
		}
		return c, sawPlaceholder
	}
	return "", sawPlaceholder
}
