package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/config"
	"github.com/ombicraft/launcher/internal/manifest"
	"github.com/ombicraft/launcher/internal/updater"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a newer launcher build is published",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		updateURL, err := config.ResolveUpdateURL(cfg.InstallRoot, cfg.UpdateURL)
		if err != nil {
			return err
		}

		doc, err := manifest.NewFetcher().Fetch(context.Background(), updateURL)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}

		n := updater.New(buildVersion, updater.WithCacheDir(config.Dir()))
		a := n.Check(doc)

		if checkJSON {
			out, err := json.MarshalIndent(map[string]any{
				"current":         buildVersion,
				"latest":          doc.LauncherVersion,
				"url":             doc.LauncherURL,
				"updateAvailable": a != nil,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling check result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if a == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "You are on the latest version (%s)\n", buildVersion)
			return nil
		}
		updater.PrintUpdateBanner(cmd.OutOrStdout(), *a)
		return nil
	},
}
