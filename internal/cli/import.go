package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/importer"
)

var importSource string

func init() {
	importCmd.Flags().StringVar(&importSource, "from", "", "Previous installation root (overrides import.source)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import settings from a previous game installation",
	Long: `Copies options, server list and map waypoints from the most recently used
vanilla installation. Runs only when the installation has no options.txt yet and
never overwrites existing files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source := cfg.ImportSource
		if importSource != "" {
			source = importSource
		}

		res, err := importer.Import(source, cfg.InstallRoot, newConsoleSink(cmd.OutOrStdout(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		if len(res.Copied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing imported.")
		}
		return nil
	},
}
