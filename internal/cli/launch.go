package cli

import (
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/gpuprofile"
	"codeberg.org/mutker/gamectl/internal/history"
	"codeberg.org/mutker/gamectl/internal/logger"
	"codeberg.org/mutker/gamectl/internal/pid"
	"codeberg.org/mutker/gamectl/internal/profile"
	"codeberg.org/mutker/gamectl/internal/screen"
	"codeberg.org/mutker/gamectl/internal/session"
	"github.com/spf13/cobra"
)

var (
	launchProfile string
	launchStoreID string
	launchExe     string
)

var launchCmd = &cobra.Command{
	Use:   "launch [flags] -- COMMAND [ARGS...]",
	Short: "Launch a game under a profile",
	Long: `Launch runs the given command under the resolved profile: compiled
environment merged over the current one, wrapper chain prepended, GPU
power profile and monitor layout applied for the session and restored
when the command exits. SIGINT and SIGTERM cancel the session
cooperatively; restoration runs either way.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
	errFactory := errors.New()

	p, err := resolveProfile()
	if err != nil {
		return err
	}
	if p == nil {
		p = &profile.Profile{}
		logger.Info().Msg("No profile matched, launching without one")
	}

	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	supCfg := session.Config{
		GPU:     gpuprofile.NewSwitcher(cfg.AdapterTimeout()),
		Screen:  screen.NewAdapter(cfg.AdapterTimeout()),
		Runner:  session.NewRunner(),
		Ambient: os.Environ(),
	}

	if cfg.History {
		journal, err := history.Open(cfg.HistoryDB, logger.Default())
		if err != nil {
			logger.Warn().Err(err).Msg("History journal unavailable, continuing without it")
		} else {
			defer func() {
				if err := journal.Close(); err != nil {
					logger.Warn().Err(err).Msg("Failed to close history journal")
				}
			}()
			supCfg.Journal = journal
		}
	}

	sup := session.NewSupervisor(supCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := sup.Begin(ctx, p, args)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		// Interrupted between prepare and spawn.
		return sup.Cancel(ctx, token)
	}

	res, err := sup.Run(ctx, token)
	if err != nil {
		return err
	}
	if res.Cancelled {
		logger.Info().Msg("Session cancelled")
		return nil
	}
	if res.ExitCode != 0 {
		return errFactory.WithData(errors.ErrChildProcess, res.ExitCode)
	}

	return nil
}

// resolveProfile walks the match precedence: store id, executable,
// profile name, then the global default. Nil means launch bare.
func resolveProfile() (*profile.Profile, error) {
	return store.Resolve(launchStoreID, launchExe, launchProfile)
}

func init() {
	launchCmd.Flags().StringVarP(&launchProfile, "profile", "p", "", "Profile name to launch under")
	launchCmd.Flags().StringVar(&launchStoreID, "store-id", "", "Store ID to match a profile against")
	launchCmd.Flags().StringVar(&launchExe, "exe", "", "Executable name to match a profile against")
	rootCmd.AddCommand(launchCmd)
}
