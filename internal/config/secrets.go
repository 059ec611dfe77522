package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads a secret using the *_FILE convention: when
// envName+"_FILE" is set, the secret is the trimmed content of that file,
// which takes precedence over the plain variable. Falls back to the value of
// envName, or empty when neither is set. A set but unreadable file is an
// error.
func ResolveSecret(envName string) (string, error) {
	if path := os.Getenv(envName + "_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from %s_FILE=%s: %w", envName, path, err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	return os.Getenv(envName), nil
}

// MustResolveSecret is like ResolveSecret but exits on error. Intended for
// required secrets during startup.
func MustResolveSecret(envName string) string {
	value, err := ResolveSecret(envName)
	if err != nil {
		// The error names the env var, never the secret content.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return value
}
