package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LauncherConfigFile is the per-installation override file.
const LauncherConfigFile = "launcher-config.json"

// LauncherConfig is the persisted per-installation override.
type LauncherConfig struct {
	UpdateURL string `json:"updateUrl,omitempty"`
}

// LoadLauncherConfig reads launcher-config.json from the installation root.
// A missing file yields the zero value.
func LoadLauncherConfig(root string) (LauncherConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, LauncherConfigFile))
	if os.IsNotExist(err) {
		return LauncherConfig{}, nil
	}
	if err != nil {
		return LauncherConfig{}, fmt.Errorf("reading %s: %w", LauncherConfigFile, err)
	}
	var lc LauncherConfig
	if err := json.Unmarshal(data, &lc); err != nil {
		return LauncherConfig{}, fmt.Errorf("parsing %s: %w", LauncherConfigFile, err)
	}
	lc.UpdateURL = strings.TrimSpace(lc.UpdateURL)
	return lc, nil
}

// SaveLauncherConfig writes launcher-config.json into the installation root.
func SaveLauncherConfig(root string, lc LauncherConfig) error {
	if lc.UpdateURL != "" {
		if err := checkURL(lc.UpdateURL); err != nil {
			return fmt.Errorf("invalid updateUrl: %w", err)
		}
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating install root %s: %w", root, err)
	}
	data, err := json.MarshalIndent(lc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", LauncherConfigFile, err)
	}
	if err := os.WriteFile(filepath.Join(root, LauncherConfigFile), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LauncherConfigFile, err)
	}
	return nil
}

// ResolveUpdateURL returns the manifest URL for an installation: a non-empty
// updateUrl in launcher-config.json wins over fallback.
func ResolveUpdateURL(root, fallback string) (string, error) {
	lc, err := LoadLauncherConfig(root)
	if err != nil {
		return "", err
	}
	if lc.UpdateURL != "" {
		return lc.UpdateURL, nil
	}
	return fallback, nil
}
