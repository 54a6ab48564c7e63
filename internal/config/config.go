package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ombicraft/launcher/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config is the resolved configuration handed to an update session.
type Config struct {
	InstallRoot   string
	UpdateURL     string
	LoaderMetaURL string
	GameMetaURL   string

	LoaderRepository string
	GameRepository   string
	LoaderGroups     []string
	NativePlatforms  []string

	BatchWidth      int
	DownloadTimeout time.Duration
	MetadataRetries int

	PreservedFiles []string
	ModsDir        string
	ImportSource   string

	LogLevel string
	LogFile  string
}

// Dir returns the path to the settings directory (~/.ombicraft/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the settings file (~/.ombicraft/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the settings directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// DefaultInstallRoot returns the platform application-data location of the
// game installation.
func DefaultInstallRoot() string {
	return filepath.Join(AppDataDir(), branding.InstallDir())
}

// AppDataDir returns the per-user application-data directory.
func AppDataDir() string {
	return appDataDir(runtime.GOOS)
}

func appDataDir(goos string) string {
	if goos == "windows" {
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	if goos == "darwin" {
		return filepath.Join(home, "Library", "Application Support")
	}
	return filepath.Join(home, ".local", "share")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("install_root", DefaultInstallRoot())
	v.SetDefault("update_url", branding.UpdateURL())
	v.SetDefault("loader_meta_url", branding.LoaderMetaURL())
	v.SetDefault("game_meta_url", branding.GameMetaURL())
	v.SetDefault("repositories.loader", branding.LoaderMavenURL())
	v.SetDefault("repositories.game", branding.GameLibrariesURL())
	v.SetDefault("repositories.loader_groups", []string{"net.fabricmc", "org.ow2.asm", "io.github.llamalad7"})
	v.SetDefault("natives.platforms", []string{"windows"})
	v.SetDefault("download.batch_width", 5)
	v.SetDefault("download.timeout", "0s")
	v.SetDefault("metadata.retries", 2)
	v.SetDefault("preserved_files", []string{"options.txt", "optionsof.txt", "optionsshaders.txt", "servers.dat"})
	v.SetDefault("mods_dir", "mods")
	v.SetDefault("import.source", filepath.Join(AppDataDir(), ".minecraft"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join("logs", "launcher.log"))
	return v
}

// Load reads the user settings file and environment into a Config.
// A missing settings file is not an error.
func Load() (Config, error) {
	return LoadFile(FilePath())
}

// LoadFile reads settings from path. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		InstallRoot:      strings.TrimSpace(v.GetString("install_root")),
		UpdateURL:        strings.TrimSpace(v.GetString("update_url")),
		LoaderMetaURL:    strings.TrimRight(strings.TrimSpace(v.GetString("loader_meta_url")), "/"),
		GameMetaURL:      strings.TrimRight(strings.TrimSpace(v.GetString("game_meta_url")), "/"),
		LoaderRepository: strings.TrimSpace(v.GetString("repositories.loader")),
		GameRepository:   strings.TrimSpace(v.GetString("repositories.game")),
		LoaderGroups:     v.GetStringSlice("repositories.loader_groups"),
		NativePlatforms:  v.GetStringSlice("natives.platforms"),
		BatchWidth:       v.GetInt("download.batch_width"),
		DownloadTimeout:  v.GetDuration("download.timeout"),
		MetadataRetries:  v.GetInt("metadata.retries"),
		PreservedFiles:   v.GetStringSlice("preserved_files"),
		ModsDir:          strings.Trim(filepath.ToSlash(strings.TrimSpace(v.GetString("mods_dir"))), "/"),
		ImportSource:     strings.TrimSpace(v.GetString("import.source")),
		LogLevel:         v.GetString("log.level"),
		LogFile:          v.GetString("log.file"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values an update session depends on.
func (c Config) Validate() error {
	if c.InstallRoot == "" {
		return fmt.Errorf("install_root must not be empty")
	}
	if c.BatchWidth < 1 {
		return fmt.Errorf("invalid download.batch_width %d", c.BatchWidth)
	}
	if c.MetadataRetries < 0 {
		return fmt.Errorf("invalid metadata.retries %d", c.MetadataRetries)
	}
	if c.ModsDir == "" {
		return fmt.Errorf("mods_dir must not be empty")
	}
	for key, raw := range map[string]string{
		"update_url":          c.UpdateURL,
		"loader_meta_url":     c.LoaderMetaURL,
		"game_meta_url":       c.GameMetaURL,
		"repositories.loader": c.LoaderRepository,
		"repositories.game":   c.GameRepository,
	} {
		if err := checkURL(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

// Get returns a settings value by key. Returns empty string if not set.
func Get(key string) (string, error) {
	v := newViper()
	v.SetConfigFile(FilePath())
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.GetString(key), nil
}

// Set writes a settings key-value pair and saves the settings file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()

	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	v.Set(key, value)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	_, ok := err.(viper.ConfigFileNotFoundError)
	return ok
}
