package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/config"
)

var updateURLClear bool

func init() {
	configUpdateURLCmd.Flags().BoolVar(&updateURLClear, "clear", false, "Remove the local update URL override")
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUpdateURLCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/.ombicraft/config.yaml, and the
per-installation update URL stored in launcher-config.json.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configUpdateURLCmd = &cobra.Command{
	Use:   "update-url [url]",
	Short: "Show or override the manifest URL for this installation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if updateURLClear {
			if err := config.SaveLauncherConfig(cfg.InstallRoot, config.LauncherConfig{}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Update URL reset to %s\n", cfg.UpdateURL)
			return nil
		}

		if len(args) == 0 {
			u, err := config.ResolveUpdateURL(cfg.InstallRoot, cfg.UpdateURL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		}

		if err := config.SaveLauncherConfig(cfg.InstallRoot, config.LauncherConfig{UpdateURL: args[0]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Update URL set to %s\n", args[0])
		return nil
	},
}
