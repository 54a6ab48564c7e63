// Package branding provides compile-time identity values for the launcher.
//
// The defaults live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Forks change the YAML, not the code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	HomeDir          string `yaml:"home_dir"`
	InstallDir       string `yaml:"install_dir"`
	EnvPrefix        string `yaml:"env_prefix"`
	GoModule         string `yaml:"go_module"`
	UpdateURL        string `yaml:"update_url"`
	LoaderMetaURL    string `yaml:"loader_meta_url"`
	GameMetaURL      string `yaml:"game_meta_url"`
	LoaderMavenURL   string `yaml:"loader_maven_url"`
	GameLibrariesURL string `yaml:"game_libraries_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:          "ombicraft",
			DisplayName:      "OmbiCraft Launcher",
			Description:      "Keeps an OmbiCraft game installation in sync with the published manifest",
			HomeDir:          ".ombicraft",
			InstallDir:       ".ombicraft_server",
			EnvPrefix:        "OMBICRAFT",
			GoModule:         "github.com/ombicraft/launcher",
			LoaderMetaURL:    "https://meta.fabricmc.net/v2",
			GameMetaURL:      "https://piston-meta.mojang.com/mc",
			LoaderMavenURL:   "https://maven.fabricmc.net/",
			GameLibrariesURL: "https://libraries.minecraft.net/",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "ombicraft").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the settings dot-directory name under $HOME (e.g., ".ombicraft").
func HomeDir() string { load(); return defaults.HomeDir }

// InstallDir returns the directory name of the game installation root, created
// under the platform's application data directory.
func InstallDir() string { load(); return defaults.InstallDir }

// EnvPrefix returns the environment variable prefix (e.g., "OMBICRAFT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// UpdateURL returns the compiled default manifest URL.
func UpdateURL() string { load(); return defaults.UpdateURL }

// LoaderMetaURL returns the base URL of the loader vendor's metadata API.
func LoaderMetaURL() string { load(); return defaults.LoaderMetaURL }

// GameMetaURL returns the base URL of the upstream game version index.
func GameMetaURL() string { load(); return defaults.GameMetaURL }

// LoaderMavenURL returns the loader's library repository.
func LoaderMavenURL() string { load(); return defaults.LoaderMavenURL }

// GameLibrariesURL returns the base game's official library repository.
func GameLibrariesURL() string { load(); return defaults.GameLibrariesURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("ROOT") → "OMBICRAFT_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
