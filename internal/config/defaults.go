// Package config provides configuration loading and defaults for devdash.
package config

import "time"

// DefaultRootDir is the default directory whose children are scanned.
const DefaultRootDir = "~/code"

// DefaultCacheFile is the default scan snapshot path.
const DefaultCacheFile = "project_scan.json"

// DefaultConfigDir is the default location for devdash configuration.
const DefaultConfigDir = "~/.config/devdash"

// DefaultDBName is the filename for the scan history database.
const DefaultDBName = "devdash.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix is prepended to environment overrides, e.g. DEVDASH_ROOT_DIR.
const EnvPrefix = "DEVDASH"

// DefaultScan holds the default scan settings.
var DefaultScan = Scan{
	Concurrency: 1,
}

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:      ":5000",
	StaticDir: "dist",
}

// DefaultLMStudio holds the default local model endpoint settings.
var DefaultLMStudio = LMStudio{
	URL:              "http://localhost:1234/v1",
	Model:            "qwen3-coder-30b",
	Timeout:          30 * time.Second,
	StatusTimeout:    2 * time.Second,
	QueriesPerMinute: 20,
}

// DefaultEditor holds the default editor integration settings.
var DefaultEditor = Editor{
	Command:      "cursor",
	SettingsPath: "~/.config/Cursor/User/settings.json",
}

// DefaultGit holds the default git integration settings.
var DefaultGit = Git{
	Timeout: 5 * time.Second,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
