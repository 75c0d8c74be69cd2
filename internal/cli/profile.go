package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/profile"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage launch profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		profiles, err := store.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTORE ID\tEXECUTABLE")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, strOr(p.StoreID), strOr(p.ExecutableMatch))
		}

		return w.Flush()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a profile and its compiled output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := store.Get(args[0])
		if err != nil {
			return err
		}

		body, err := toml.Marshal(p)
		if err != nil {
			return errors.New().Wrap(errors.ErrProfileEncode, err)
		}
		cmd.Print(string(body))

		c := profile.Compile(p)
		if len(c.Env) > 0 {
			cmd.Println("\n# compiled environment")
			for _, kv := range c.Env.Sorted() {
				cmd.Println("# " + kv)
			}
		}
		if names := c.Wrappers.Names(); len(names) > 0 {
			cmd.Println("\n# wrapper chain: " + strings.Join(names, " -> "))
		}
		for _, w := range c.Warnings {
			cmd.Printf("\n# warning (%s): %s\n", w.Field, w.Message)
		}

		return nil
	},
}

var profileSaveCmd = &cobra.Command{
	Use:   "save FILE",
	Short: "Save a profile from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		errFactory := errors.New()

		body, err := os.ReadFile(args[0])
		if err != nil {
			return errFactory.Wrap(errors.ErrOperationFailed, err)
		}

		var p profile.Profile
		if err := toml.Unmarshal(body, &p); err != nil {
			return errFactory.Wrap(errors.ErrProfileDecode, err)
		}
		if p.Name == "" {
			return errFactory.WithMessage(errors.ErrInvalidArgument, "profile has no name")
		}

		if err := store.Put(&p); err != nil {
			return err
		}
		cmd.Printf("Saved profile %q\n", p.Name)

		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted profile %q\n", args[0])

		return nil
	},
}

var profileTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List profile templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		templates, err := store.ListTemplates()
		if err != nil {
			return err
		}
		for _, p := range templates {
			cmd.Println(p.Name)
		}

		return nil
	},
}

var profileApplyTemplateCmd = &cobra.Command{
	Use:   "apply-template TEMPLATE GAME",
	Short: "Create a game profile from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := store.ApplyTemplate(args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("Created profile %q from template %q\n", p.Name, args[0])

		return nil
	},
}

func strOr(s *string) string {
	if s == nil {
		return "-"
	}

	return *s
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileTemplatesCmd)
	profileCmd.AddCommand(profileApplyTemplateCmd)
	rootCmd.AddCommand(profileCmd)
}
