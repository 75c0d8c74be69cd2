package cli

import (
	"codeberg.org/mutker/gamectl/internal/launch"
	"codeberg.org/mutker/gamectl/internal/profile"
	"github.com/spf13/cobra"
)

var (
	commandDelegate bool
	commandDesktop  bool
	commandIcon     string
	commandComment  string
)

var commandCmd = &cobra.Command{
	Use:   "command NAME -- COMMAND [ARGS...]",
	Short: "Print a launch command for a profile",
	Long: `Command prints a copy/paste launch command for the named profile.
The default flavor inlines the compiled environment and wrapper chain;
--delegate prints a command that re-resolves the profile at launch
time, so later edits take effect without regenerating. --desktop wraps
either flavor in a [Desktop Entry] body.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target := args[0], args[1:]

		p, err := store.Get(name)
		if err != nil {
			return err
		}
		c := profile.Compile(p)

		if commandDesktop {
			entry := launch.DesktopEntry{
				Name:     p.Name,
				Comment:  commandComment,
				Icon:     commandIcon,
				Target:   target,
				Delegate: commandDelegate,
			}
			cmd.Print(launch.RenderDesktopEntry(entry, p.Name, c))

			return nil
		}

		if commandDelegate {
			cmd.Println(launch.RenderDelegate(p.Name, target))
		} else {
			cmd.Println(launch.RenderInline(c, target))
		}

		return nil
	},
}

func init() {
	commandCmd.Flags().BoolVar(&commandDelegate, "delegate", false, "Defer profile compilation to launch time")
	commandCmd.Flags().BoolVar(&commandDesktop, "desktop", false, "Render a [Desktop Entry] body")
	commandCmd.Flags().StringVar(&commandIcon, "icon", "", "Icon for the desktop entry")
	commandCmd.Flags().StringVar(&commandComment, "comment", "", "Comment for the desktop entry")
	rootCmd.AddCommand(commandCmd)
}
