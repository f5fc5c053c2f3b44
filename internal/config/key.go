package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LoadAPIKey reads the API key from path, trimming surrounding whitespace so
// a trailing newline in the file does not corrupt request headers. The key
// itself is never included in errors or logs.
func LoadAPIKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("API key file not found: %s", path)
		}
		return "", fmt.Errorf("stat API key file %s: %w", path, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		slog.Warn("API key file has insecure permissions",
			"path", path,
			"mode", fmt.Sprintf("%04o", perm),
			"recommended", "0600")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read API key file %s: %w", path, err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file is empty: %s", path)
	}
	return key, nil
}
