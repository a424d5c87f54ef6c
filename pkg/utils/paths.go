package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "geonote"

// GetDefaultDataDir returns the system-appropriate directory for the database and media.
func GetDefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName)
	default: // Primarily Linux, but also other UNIX-like systems.
		return filepath.Join(homeDir, ".local", "share", appName)
	}
}

// GetDefaultDBPathOnly returns a system-appropriate default path for the database
func GetDefaultDBPathOnly() string {
	return filepath.Join(GetDefaultDataDir(), appName+".db")
}

// GetDefaultMediaDir is where captured and imported photos are stored.
func GetDefaultMediaDir() string {
	return filepath.Join(GetDefaultDataDir(), "images")
}

// GetDefaultConfigPath returns the config file location; it may not exist.
func GetDefaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName, "config.yaml")
	}
	return filepath.Join(GetDefaultDataDir(), "config.yaml")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", path, err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}

// ResolveAndEnsureDBPath makes providedPath absolute and creates its directory.
// ":memory:" is returned unchanged.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	if providedPath == ":memory:" {
		return providedPath, nil
	}
	targetPath := providedPath
	if targetPath == "" {
		targetPath = GetDefaultDBPathOnly()
	}

	targetPath, err := ExpandHome(targetPath)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", targetPath, err)
	}
	targetPath = absPath

	dbDir := filepath.Dir(targetPath)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory '%s' for database: %w", dbDir, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat directory '%s' for database: %w", dbDir, err)
	}

	return targetPath, nil
}
