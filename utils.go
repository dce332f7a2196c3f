package quill

import (
	"fmt"
	"os"
	"path/filepath"
)

// expandPath resolves ~, $VAR, and relative prefixes to an absolute path.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	switch path[0] {
	case '~':
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(homeDir, path[1:]), nil
	case '/':
		return filepath.Clean(path), nil
	case '$':
		if value, exists := os.LookupEnv(path[1:]); exists {
			return filepath.Clean(value), nil
		}
		return "", fmt.Errorf("environment variable %s is not set", path[1:])
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		return filepath.Join(wd, path), nil
	}
}
