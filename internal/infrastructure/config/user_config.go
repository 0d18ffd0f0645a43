package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents user preferences stored in ~/.colonysim/config.json.
// It never holds tokens.
type UserConfig struct {
	// Character used when a command does not name one
	DefaultCharacterID *int64 `json:"default_character_id,omitempty"`

	// Name of the default character, for display
	DefaultCharacterName string `json:"default_character_name,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for the file in the user's home directory
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".colonysim", "config.json")), nil
}

// NewUserConfigHandlerAt creates a handler for an explicit file path
func NewUserConfigHandlerAt(path string) *UserConfigHandler {
	return &UserConfigHandler{configPath: path}
}

// Load reads the user config from disk. A missing file is an empty config.
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &cfg, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(h.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// SetDefaultCharacter stores the default character
func (h *UserConfigHandler) SetDefaultCharacter(id int64, name string) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultCharacterID = &id
	cfg.DefaultCharacterName = name
	return h.Save(cfg)
}

// ClearDefaultCharacter removes the default character setting
func (h *UserConfigHandler) ClearDefaultCharacter() error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	cfg.DefaultCharacterID = nil
	cfg.DefaultCharacterName = ""
	return h.Save(cfg)
}

// Path returns the path to the user config file
func (h *UserConfigHandler) Path() string {
	return h.configPath
}
