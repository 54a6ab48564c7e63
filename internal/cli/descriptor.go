package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ombicraft/launcher/internal/descriptor"
	"github.com/ombicraft/launcher/internal/engine"
	"github.com/ombicraft/launcher/internal/manifest"
)

var descriptorOutput string

func init() {
	descriptorMergeCmd.Flags().StringVarP(&descriptorOutput, "output", "o", "", "Write the merged descriptor to a file instead of stdout")
	descriptorCmd.AddCommand(descriptorMergeCmd)
	descriptorCmd.AddCommand(descriptorStatusCmd)
	rootCmd.AddCommand(descriptorCmd)
}

var descriptorCmd = &cobra.Command{
	Use:   "descriptor",
	Short: "Inspect and build launch descriptors",
}

var descriptorMergeCmd = &cobra.Command{
	Use:   "merge <loader.json> <base.json>",
	Short: "Merge a loader profile into a base game descriptor",
	Long: `Runs the same merge the installer applies, offline. The result has no
inheritsFrom and carries the base asset index and downloads.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		merged, err := mergeFiles(args[0], args[1], engine.MergeOptions(cfg), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if descriptorOutput != "" {
			if err := descriptor.WriteFile(descriptorOutput, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", descriptorOutput)
			return nil
		}
		out, err := json.MarshalIndent(merged, "", "    ")
		if err != nil {
			return fmt.Errorf("marshaling descriptor: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// mergeFiles reads both descriptors, merges them and reports warnings to w.
func mergeFiles(loaderPath, basePath string, opts descriptor.MergeOptions, w io.Writer) (*descriptor.Version, error) {
	loader, err := descriptor.ReadFile(loaderPath)
	if err != nil {
		return nil, err
	}
	base, err := descriptor.ReadFile(basePath)
	if err != nil {
		return nil, err
	}
	merged, warnings := descriptor.Merge(loader, base, opts)
	for _, warn := range warnings {
		fmt.Fprintln(w, "WARNING:", warn)
	}
	if err := merged.Launchable(); err != nil {
		fmt.Fprintln(w, "WARNING:", err)
	}
	return merged, nil
}

var descriptorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the descriptor state of the last synced version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		snap, err := manifest.LoadSnapshot(cfg.InstallRoot)
		if err != nil {
			return err
		}
		if snap == nil || snap.GameVersion == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No synced version. Run sync first.")
			return nil
		}
		return printStatus(cmd.OutOrStdout(), cfg.InstallRoot, snap.GameVersion)
	},
}

func printStatus(w io.Writer, root, id string) error {
	target, err := descriptor.ParseTargetID(id)
	if err != nil {
		return err
	}
	state := descriptor.NewInstaller(nil).State(root, id)
	fmt.Fprintf(w, "Version:  %s\n", id)
	fmt.Fprintf(w, "Loader:   %s\n", target.LoaderVersion)
	fmt.Fprintf(w, "Game:     %s\n", target.GameVersion)
	fmt.Fprintf(w, "State:    %s\n", state)
	if state != descriptor.Present {
		return nil
	}

	v, err := descriptor.ReadFile(descriptor.DescriptorPath(root, id))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Libraries: %d\n", len(v.Libraries))
	if err := v.Launchable(); err != nil {
		fmt.Fprintf(w, "Launchable: no (%v)\n", err)
		return nil
	}
	fmt.Fprintln(w, "Launchable: yes")
	return nil
}
