// Package cli defines the gamectl command tree.
package cli

import (
	"codeberg.org/mutker/gamectl/internal/config"
	"codeberg.org/mutker/gamectl/internal/logger"
	"codeberg.org/mutker/gamectl/internal/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cfg   *config.Config
	store *profile.Store

	flagDebug   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gamectl",
	Short: "Game launch profiles for Linux",
	Long: `gamectl compiles per-game launch profiles into environment variables and
wrapper chains, applies GPU power profiles and monitor layouts for the
session, and restores everything when the game exits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flags the user actually set override the config file.
		var opts []config.Option
		cmd.Root().PersistentFlags().Visit(func(f *pflag.Flag) {
			opts = append(opts, config.WithSet(f.Name, f.Value.String()))
		})

		var err error
		cfg, err = config.Load(opts...)
		if err != nil {
			return err
		}

		logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

		store, err = profile.NewStore(cfg.ProfileDir)

		return err
	},
}

// SetVersion sets the version reported by gamectl version and --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the gamectl version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
}
