package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memix/memix/internal/app"
	"github.com/memix/memix/internal/pkg/ai"
	"github.com/memix/memix/internal/pkg/config"
	apperrors "github.com/memix/memix/internal/pkg/errors"
	"github.com/memix/memix/internal/pkg/git"
	"github.com/memix/memix/internal/pkg/security"
	"github.com/memix/memix/internal/pkg/ui"
)

// CommitFlags holds the flags for the commit command.
type CommitFlags struct {
	DryRun     bool
	Yes        bool
	OutputFile string
}

// stdin is the terminal checked before launching interactive prompts.
var stdin = os.Stdin

// NewCommitCmd creates the commit command.
func NewCommitCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Suggest a commit message and commit with it",
		Long: `Suggest a commit message for your staged changes, then commit with it
once you confirm. Pressing Enter accepts the suggestion.

Examples:
  memix commit              # Interactive commit
  memix commit --yes        # Commit without asking
  memix commit --dry-run    # Show the suggestion only
  memix commit -o msg.txt   # Save the suggestion to a file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	addCommitFlags(cmd, flags)

	return cmd
}

func addCommitFlags(cmd *cobra.Command, flags *CommitFlags) {
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Suggest a message without committing")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip the confirmation and commit immediately")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the suggested message to a file (implies --dry-run)")
}

// loadConfig resolves the configuration for this run: flags, then the
// environment, then .env, then the config file, then defaults.
func loadConfig(cmd *cobra.Command) (*config.ViperManager, *config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	for flag, key := range map[string]string{
		"provider": "provider.name",
		"model":    "provider.model",
		"profile":  "provider.profile",
	} {
		if value, _ := cmd.Flags().GetString(flag); value != "" {
			cfgMgr.SetOverride(key, value)
			apperrors.Debug("%s overridden via flag: %s", key, value)
		}
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
	}
	return cfgMgr, cfg, nil
}

// runCommit executes the commit command logic.
func runCommit(cmd *cobra.Command, flags *CommitFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verbose, _ := cmd.Flags().GetBool("verbose")
	apperrors.SetVerbose(verbose)

	cfgMgr, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if ui.NeedsSetup(cfg.Provider.APIKey, stdin) {
		if _, err := ui.RunInteractiveSetup(cfgMgr); err != nil {
			return apperrors.NewInputError(err)
		}
		if cfg, err = cfgMgr.Load(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
		}
	}

	if err := checkConfig(cfg); err != nil {
		return err
	}

	apperrors.Debug("provider=%s profile=%s model=%s key=%s",
		cfg.Provider.Name, cfg.Provider.Profile, cfg.Provider.Model, security.MaskAPIKey(cfg.Provider.APIKey))

	aiProvider, err := ai.NewProvider(cfg)
	if err != nil {
		return err
	}

	colorEnabled := cfg.UI.ColorEnabled && ui.IsTerminal(os.Stdout)

	var uiMgr ui.Manager
	if flags.Yes {
		m := ui.NewNonInteractiveManager(colorEnabled)
		m.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		uiMgr = m
	} else {
		uiMgr = ui.NewDefaultManager(colorEnabled)
	}

	service := app.NewCommitService(git.NewClient(), aiProvider, uiMgr, cfg)

	return service.Run(ctx, &app.RunOptions{
		DryRun:     flags.DryRun,
		OutputFile: flags.OutputFile,
	})
}

// checkConfig fails fast on settings the provider would reject anyway.
func checkConfig(cfg *config.Config) error {
	if cfg.Provider.APIKey == "" {
		return apperrors.NewMissingAPIKeyError(cfg.Provider.Name)
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.NewInvalidConfigError(err.Error())
	}
	// Keys for custom endpoints follow no known format.
	if cfg.Provider.Endpoint == "" {
		if err := security.ValidateAPIKeyFormat(cfg.Provider.Name, cfg.Provider.APIKey); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "invalid API key").
				WithSuggestion("Check GROQ_KEY or run 'memix config set provider.api_key <your-key>'")
		}
	}
	return nil
}
