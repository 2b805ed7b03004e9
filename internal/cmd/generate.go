package cmd

import (
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command as an alias for commit --dry-run.
func NewGenerateCmd() *cobra.Command {
	flags := &CommitFlags{
		DryRun: true,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Suggest a commit message without committing",
		Long: `Suggest a commit message for your staged changes without committing.

This is equivalent to running 'memix commit --dry-run'.

Examples:
  memix generate              # Show the suggestion
  memix generate -o msg.txt   # Save the suggestion to a file
  memix generate --yes        # Plain output, suitable for pipes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Print plain output without terminal styling")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the suggested message to a file")

	return cmd
}
