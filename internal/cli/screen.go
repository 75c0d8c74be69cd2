package cli

import (
	"fmt"
	"text/tabwriter"

	"codeberg.org/mutker/gamectl/internal/screen"
	"github.com/spf13/cobra"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Inspect the monitor layout",
}

var screenCompositorCmd = &cobra.Command{
	Use:   "compositor",
	Short: "Print the detected compositor",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(screen.NewAdapter(cfg.AdapterTimeout()).Detect().String())
	},
}

var screenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected monitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		adapter := screen.NewAdapter(cfg.AdapterTimeout())

		monitors, err := adapter.ListMonitors(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMODE\tPOSITION\tSCALE\tSTATE")
		for _, m := range monitors {
			state := "off"
			if m.Active {
				state = "on"
			}
			if m.Focused {
				state += " focused"
			}
			fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.1f\t%s\n", m.Name, m.Mode(), m.X, m.Y, m.Scale, state)
		}

		return w.Flush()
	},
}

func init() {
	screenCmd.AddCommand(screenCompositorCmd)
	screenCmd.AddCommand(screenListCmd)
	rootCmd.AddCommand(screenCmd)
}
