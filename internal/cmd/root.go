// Package cmd contains the CLI command definitions for memix.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the memix CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	commitCmd := NewCommitCmd()

	rootCmd := &cobra.Command{
		Use:   "memix",
		Short: "Suggest a commit message for your staged changes",
		Long: `memix reads your staged git diff, asks a chat-completion model
(Groq by default) for a commit message, shows it to you and commits
with it once you confirm.

The API key is read from GROQ_KEY, from a .env file in the current
directory, or from ~/.memix/config.yaml.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running memix without a subcommand is the commit flow.
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			yes, _ := cmd.Flags().GetBool("yes")
			output, _ := cmd.Flags().GetString("output")

			return runCommit(cmd, &CommitFlags{
				DryRun:     dryRun,
				Yes:        yes,
				OutputFile: output,
			})
		},
	}

	rootCmd.SetVersionTemplate(`memix {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.memix/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "Chat provider to use (groq, openai)")
	rootCmd.PersistentFlags().String("model", "", "Model to use instead of the profile's")
	rootCmd.PersistentFlags().String("profile", "", "Prompt profile to use (see 'memix profiles')")

	addCommitFlags(rootCmd, &CommitFlags{})

	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewProfilesCmd())

	return rootCmd
}
