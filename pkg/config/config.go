/*
Package config manages TOML config for histrank services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/histrank/internal/utils"
	"github.com/bastiangx/histrank/pkg/rank"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	History HistoryConfig `toml:"history"`
	Ranking RankingConfig `toml:"ranking"`
	Server  ServerConfig  `toml:"server"`
	TUI     TuiConfig     `toml:"tui"`
	CLI     CliConfig     `toml:"cli"`
}

// HistoryConfig has history file related options.
type HistoryConfig struct {
	// File overrides history file discovery. Empty means $HISTFILE,
	// then ~/.bash_history.
	File string `toml:"file"`
}

// RankingConfig holds ranking engine options.
type RankingConfig struct {
	// Blacklist extends the builtin noise command set.
	Blacklist []string `toml:"blacklist"`
	// KeyFloor is the minimum bucket keyspace regardless of history size.
	KeyFloor int `toml:"key_floor"`
	// KeyScale is the keyspace granted per history entry.
	KeyScale int `toml:"key_scale"`
	// ClampBigKeys folds scores beyond the keyspace into the top bucket
	// instead of treating them as a fault.
	ClampBigKeys bool `toml:"clamp_big_keys"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
	MinQuery int `toml:"min_query"`
	MaxQuery int `toml:"max_query"`
}

// TuiConfig holds picker interface options.
type TuiConfig struct {
	// MatchMode is "substring" or "prefix".
	MatchMode string `toml:"match_mode"`
	// PrintLimit caps non-interactive -n output. 0 means all entries.
	PrintLimit int `toml:"print_limit"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	DefaultMode  string `toml:"default_mode"`
}

// RankOptions maps the [ranking] table onto engine options. Zero
// values keep the engine defaults.
func (c *Config) RankOptions() rank.Options {
	opts := rank.DefaultOptions()
	opts.Blacklist = rank.NewBlacklist(c.Ranking.Blacklist...)
	if c.Ranking.KeyFloor > 0 {
		opts.KeyFloor = uint32(c.Ranking.KeyFloor)
	}
	if c.Ranking.KeyScale > 0 {
		opts.KeyScale = uint32(c.Ranking.KeyScale)
	}
	opts.ClampBigKeys = c.Ranking.ClampBigKeys
	return opts
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/histrank (or %APPDATA%\histrank)
// 2. ~/.config/histrank
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	dir, err := utils.ConfigDir("histrank")
	if err != nil {
		log.Errorf("Failed to resolve config directory: %v", err)
		execDir, execErr := os.Executable()
		if execErr != nil {
			return "", execErr
		}
		return filepath.Dir(execDir), nil
	}
	if utils.IsDirWritable(dir) {
		return dir, nil
	}
	// Not conventional, fallback when the config home is not writable
	execDir, err := os.Executable()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return filepath.Dir(execDir), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/histrank/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			File: "",
		},
		Ranking: RankingConfig{
			Blacklist:    []string{},
			KeyFloor:     100000,
			KeyScale:     1000,
			ClampBigKeys: true,
		},
		Server: ServerConfig{
			MaxLimit: 64,
			MinQuery: 1,
			MaxQuery: 120,
		},
		TUI: TuiConfig{
			MatchMode:  "substring",
			PrintLimit: 0,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			DefaultMode:  "substring",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if historySection, ok := utils.ExtractSection(tempConfig, "history"); ok {
		extractHistoryConfig(historySection, &config.History)
	}
	if rankingSection, ok := utils.ExtractSection(tempConfig, "ranking"); ok {
		extractRankingConfig(rankingSection, &config.Ranking)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if tuiSection, ok := utils.ExtractSection(tempConfig, "tui"); ok {
		extractTuiConfig(tuiSection, &config.TUI)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractHistoryConfig extracts history file configuration from a map
func extractHistoryConfig(data map[string]any, history *HistoryConfig) {
	if val, ok := utils.ExtractString(data, "file"); ok {
		history.File = val
	}
}

// extractRankingConfig extracts ranking engine configuration from a map
func extractRankingConfig(data map[string]any, ranking *RankingConfig) {
	if val, ok := utils.ExtractStringSlice(data, "blacklist"); ok {
		ranking.Blacklist = val
	}
	if val, ok := utils.ExtractInt64(data, "key_floor"); ok {
		ranking.KeyFloor = val
	}
	if val, ok := utils.ExtractInt64(data, "key_scale"); ok {
		ranking.KeyScale = val
	}
	if val, ok := utils.ExtractBool(data, "clamp_big_keys"); ok {
		ranking.ClampBigKeys = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_query"); ok {
		server.MinQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
}

// extractTuiConfig extracts picker configuration from a map
func extractTuiConfig(data map[string]any, tui *TuiConfig) {
	if val, ok := utils.ExtractString(data, "match_mode"); ok {
		tui.MatchMode = val
	}
	if val, ok := utils.ExtractInt64(data, "print_limit"); ok {
		tui.PrintLimit = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "default_mode"); ok {
		cli.DefaultMode = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server config values and saves to file
func (c *Config) Update(configPath string, maxLimit, minQuery, maxQuery *int) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minQuery != nil {
		server.MinQuery = *minQuery
	}
	if maxQuery != nil {
		server.MaxQuery = *maxQuery
	}
	return SaveConfig(c, configPath)
}
