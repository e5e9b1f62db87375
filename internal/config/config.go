package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level devdash configuration.
type Config struct {
	RootDir   string   `mapstructure:"root_dir"`
	CacheFile string   `mapstructure:"cache_file"`
	Scan      Scan     `mapstructure:"scan"`
	Server    Server   `mapstructure:"server"`
	LMStudio  LMStudio `mapstructure:"lmstudio"`
	Editor    Editor   `mapstructure:"editor"`
	Git       Git      `mapstructure:"git"`
	Output    Output   `mapstructure:"output"`
}

// Scan defines scanner behavior.
type Scan struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Server defines the HTTP API settings.
type Server struct {
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
	StaticDir     string `mapstructure:"static_dir"`
}

// LMStudio defines the OpenAI-compatible local model endpoint.
type LMStudio struct {
	URL              string        `mapstructure:"url"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	StatusTimeout    time.Duration `mapstructure:"status_timeout"`
	QueriesPerMinute int           `mapstructure:"queries_per_minute"`
}

// Editor defines how projects are opened in an external editor.
type Editor struct {
	Command      string `mapstructure:"command"`
	SettingsPath string `mapstructure:"settings_path"`
}

// Git defines git integration settings.
type Git struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file in the working
// directory and DEVDASH_* environment variables override file values.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("root_dir", DefaultRootDir)
	v.SetDefault("cache_file", DefaultCacheFile)
	v.SetDefault("scan.concurrency", DefaultScan.Concurrency)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.allowed_origin", DefaultServer.AllowedOrigin)
	v.SetDefault("server.static_dir", DefaultServer.StaticDir)
	v.SetDefault("lmstudio.url", DefaultLMStudio.URL)
	v.SetDefault("lmstudio.model", DefaultLMStudio.Model)
	v.SetDefault("lmstudio.timeout", DefaultLMStudio.Timeout)
	v.SetDefault("lmstudio.status_timeout", DefaultLMStudio.StatusTimeout)
	v.SetDefault("lmstudio.queries_per_minute", DefaultLMStudio.QueriesPerMinute)
	v.SetDefault("editor.command", DefaultEditor.Command)
	v.SetDefault("editor.settings_path", DefaultEditor.SettingsPath)
	v.SetDefault("git.timeout", DefaultGit.Timeout)
	v.SetDefault("output.color", DefaultOutput.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.RootDir = expandPath(cfg.RootDir)
	cfg.CacheFile = expandPath(cfg.CacheFile)
	cfg.Server.StaticDir = expandPath(cfg.Server.StaticDir)
	cfg.Editor.SettingsPath = expandPath(cfg.Editor.SettingsPath)
	if cfg.Scan.Concurrency < 1 {
		cfg.Scan.Concurrency = 1
	}

	return &cfg, nil
}

// DBPath returns the full path to the scan history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
