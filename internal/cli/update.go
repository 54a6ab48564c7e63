package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/config"
	"github.com/ombicraft/launcher/internal/engine"
	"github.com/ombicraft/launcher/internal/events"
	"github.com/ombicraft/launcher/internal/updater"
)

var (
	syncNoImport bool
	syncQuiet    bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncNoImport, "no-import", false, "Skip importing settings from a previous installation")
	syncCmd.Flags().BoolVarP(&syncQuiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"update"},
	Short:   "Bring the installation in line with the server manifest",
	Long: `Fetches the update manifest, removes mods the server no longer lists,
downloads new or changed files, and builds the launch descriptor.

An unreachable update server is not an error: the installation is left as is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		entry, closer, err := initLogging(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		console := newConsoleSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
		var sink events.Sink = console
		if syncQuiet {
			sink = events.Funcs{OnWarn: console.Warn, OnError: console.Error}
		}
		sink = events.Multi(sink, events.Logrus(entry))

		opts := []engine.Option{
			engine.WithLauncherVersion(buildVersion),
			engine.WithVersionCache(config.Dir()),
			engine.WithLogger(entry),
			engine.WithUpdateListener(func(a updater.Availability) {
				updater.PrintUpdateBanner(cmd.ErrOrStderr(), a)
			}),
		}
		if !syncNoImport && cfg.ImportSource != "" {
			opts = append(opts, engine.WithSettingsImport(cfg.ImportSource))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := engine.NewSession(cfg, sink, opts...).Run(ctx)
		if err != nil {
			return err
		}
		if res.Offline {
			fmt.Fprintln(cmd.OutOrStdout(), "Offline: installation left unchanged.")
			return nil
		}
		if res.Download != nil && !syncQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s: %d downloaded (%s), %d removed, %d up to date.\n",
				cfg.InstallRoot, len(res.Download.Downloaded), formatBytes(res.Download.Bytes),
				len(res.Removed), len(res.Plan.UpToDate))
		}
		return nil
	},
}
