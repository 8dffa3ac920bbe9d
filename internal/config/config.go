package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DirName is the name of the global (~/.nos) and repo (.nos) config directories.
const DirName = ".nos"

// Stats is the starting stats block. Kept separate from the engine's types
// so config stays a leaf package.
type Stats struct {
	Physical int `json:"physical"`
	Mental   int `json:"mental"`
}

// Config holds application configuration.
type Config struct {
	// EpisodesDir holds the episode documents. Relative paths resolve against the working directory.
	EpisodesDir string `json:"episodes_dir,omitempty"`

	// Language is the default language code used when a command does not pass one.
	Language string `json:"language,omitempty"`

	// StartEpisode is the episode a new game opens.
	StartEpisode int `json:"start_episode,omitempty"`

	// HistoryCapacity bounds the per-session history log.
	HistoryCapacity int `json:"history_capacity,omitempty"`

	// SaveBackend selects where games are saved: "file" (savegame.json) or "sqlite" (slots in nos.db).
	SaveBackend string `json:"save_backend,omitempty"`

	// Autosave writes the session to the auto-save slot after every choice.
	Autosave bool `json:"autosave,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// StartingStats seeds the player state when an episode is loaded.
	StartingStats *Stats `json:"starting_stats,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "episode", "session", "save", "tape".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EpisodesDir:     "episodes",
		Language:        "en",
		StartEpisode:    1,
		HistoryCapacity: 100,
		SaveBackend:     BackendFile,
		LogFormat:       LogFormatText,
		LogLevel:        "info",
		StartingStats:   &Stats{Physical: 100, Mental: 100},
	}
}

// GlobalDir returns ~/.nos.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.nos) and repo (.nos) directories.
// Repo config is found by walking upward from startDir to find the nearest .nos/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .nos/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate rejects enumerated fields holding unknown values.
func (c *Config) Validate() error {
	switch c.SaveBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("save_backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.SaveBackend)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	if c.HistoryCapacity < 0 {
		return fmt.Errorf("history_capacity must not be negative")
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.EpisodesDir = firstString(overlay.EpisodesDir, base.EpisodesDir)
	result.Language = firstString(overlay.Language, base.Language)
	result.SaveBackend = firstString(overlay.SaveBackend, base.SaveBackend)
	result.LogFormat = firstString(overlay.LogFormat, base.LogFormat)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)

	result.StartEpisode = firstInt(overlay.StartEpisode, base.StartEpisode)
	result.HistoryCapacity = firstInt(overlay.HistoryCapacity, base.HistoryCapacity)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.StartingStats = base.StartingStats
	if overlay.StartingStats != nil {
		s := *overlay.StartingStats
		result.StartingStats = &s
	}

	// Booleans: overlay wins if true, else base
	result.Autosave = base.Autosave || overlay.Autosave

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
