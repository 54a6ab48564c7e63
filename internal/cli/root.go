package cli

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/branding"
	"github.com/ombicraft/launcher/internal/config"
	"github.com/ombicraft/launcher/internal/logging"
	"github.com/ombicraft/launcher/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	rootFlag     string
	logLevelFlag string
	verboseFlag  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Installation root (overrides install_root)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides log.level)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Mirror the log to stderr")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps a modded game installation in sync with the server manifest:
it downloads new and changed files, removes mods the server dropped, and
builds the launch descriptor for the configured loader version.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Skip banners for commands that report availability themselves.
		switch cmd.Name() {
		case "version", "check", "sync":
			return
		}

		// Cached result only, no network.
		updater.New(buildVersion).CheckAndPrintBanner(os.Stderr, config.Dir())
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

// loadConfig reads the settings file and applies persistent flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if rootFlag != "" {
		abs, err := filepath.Abs(rootFlag)
		if err != nil {
			return config.Config{}, err
		}
		cfg.InstallRoot = abs
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, nil
}

// initLogging builds the logger for cfg. Relative log files live under the
// installation root.
func initLogging(cfg config.Config) (*log.Entry, io.Closer, error) {
	logPath := logFilePath(cfg)
	var console io.Writer
	if verboseFlag {
		console = os.Stderr
	}
	logger, closer, err := logging.Init(cfg.LogLevel, logPath, console)
	if err != nil {
		return nil, nil, err
	}
	return log.NewEntry(logger).WithField("version", buildVersion), closer, nil
}

func logFilePath(cfg config.Config) string {
	if cfg.LogFile == "" || cfg.LogFile == "console" || filepath.IsAbs(cfg.LogFile) {
		return cfg.LogFile
	}
	return filepath.Join(cfg.InstallRoot, filepath.FromSlash(cfg.LogFile))
}
