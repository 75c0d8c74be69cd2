package cli

import (
	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/gpu"
	"codeberg.org/mutker/gamectl/internal/gpuprofile"
	"github.com/spf13/cobra"
)

var gpuCmd = &cobra.Command{
	Use:   "gpu",
	Short: "Inspect the GPU",
}

var gpuInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print a GPU snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := gpu.Snapshot()
		if err != nil {
			return err
		}

		cmd.Printf("GPU:          %s\n", info.Name)
		cmd.Printf("Driver:       %s\n", info.DriverVersion)
		cmd.Printf("Temperature:  %d°C\n", info.Temperature)
		cmd.Printf("Fan speed:    %d%%\n", info.FanSpeed)
		cmd.Printf("Power:        %dW / %dW\n", info.PowerUsage, info.PowerLimit)
		cmd.Printf("Clocks:       %dMHz core, %dMHz memory\n", info.CoreClock, info.MemoryClock)
		cmd.Printf("Memory:       %dMiB / %dMiB\n", info.MemoryUsedMiB, info.MemoryTotalMiB)
		cmd.Printf("Utilization:  %d%%\n", info.UtilizationGPU)

		return nil
	},
}

var gpuProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List GPU power profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switcher := gpuprofile.NewSwitcher(cfg.AdapterTimeout())
		if !switcher.IsAvailable() {
			return errors.New().New(errors.ErrExternalToolUnavailable)
		}

		active, err := switcher.Active(cmd.Context())
		if err != nil {
			return err
		}
		profiles, err := switcher.List(cmd.Context())
		if err != nil {
			return err
		}

		for _, name := range profiles {
			marker := " "
			if name == active {
				marker = "*"
			}
			cmd.Printf("%s %s\n", marker, name)
		}

		return nil
	},
}

func init() {
	gpuCmd.AddCommand(gpuInfoCmd)
	gpuCmd.AddCommand(gpuProfilesCmd)
	rootCmd.AddCommand(gpuCmd)
}
