package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memix/memix/internal/pkg/ai"
)

// NewProfilesCmd creates the profiles command.
func NewProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available prompt profiles",
		Long: `List the prompt profiles memix can use.

Select one with --profile or 'memix config set provider.profile <name>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range ai.Profiles() {
				marker := " "
				if p.Name == ai.DefaultProfileName {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-10s %-22s %s\n", marker, p.Name, p.Model, p.Description)
			}
			return nil
		},
	}
}
