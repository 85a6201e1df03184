// Package brand provides centralized branding constants for the rule compiler.
// This makes it easy to fork or white-label the tool by changing brand.json.
//
// The brand identity is loaded from brand.json at compile time via go:embed.
// This allows other tools (scripts, docs generators) to read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Vendor           string `json:"vendor"`
	Website          string `json:"website"`
	Repository       string `json:"repository"`
	Description      string `json:"description"`
	Tagline          string `json:"tagline"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultStateDir  string `json:"defaultStateDir"`
	DefaultLogDir    string `json:"defaultLogDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
	Copyright        string `json:"copyright"`
	License          string `json:"license"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	// Initialize exported variables after JSON is parsed
	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Website = b.Website
	Repository = b.Repository
	Description = b.Description
	Tagline = b.Tagline
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultStateDir = b.DefaultStateDir
	DefaultLogDir = b.DefaultLogDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	Copyright = b.Copyright
	License = b.License
}

// Exported variables for backward compatibility and convenience
var (
	Name             string
	LowerName        string
	Vendor           string
	Website          string
	Repository       string
	Description      string
	Tagline          string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultStateDir  string
	DefaultLogDir    string
	BinaryName       string
	ConfigFileName   string
	Copyright        string
	License          string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
	BuildArch = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// GetStateDir returns the state directory, checking env vars first.
// Priority: FIRN_STATE_DIR > FIRN_PREFIX/state > DefaultStateDir
func GetStateDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_STATE_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "state")
	}
	return DefaultStateDir
}

// GetLogDir returns the log directory, checking env vars first.
// Priority: FIRN_LOG_DIR > FIRN_PREFIX/log > DefaultLogDir
func GetLogDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_LOG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "log")
	}
	return DefaultLogDir
}

// GetConfigDir returns the config directory, checking env vars first.
// Priority: FIRN_CONFIG_DIR > FIRN_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return DefaultConfigDir
}

// HistoryDBPath returns the default path for the build history database.
func HistoryDBPath() string {
	return filepath.Join(GetStateDir(), LowerName+"-history.db")
}
