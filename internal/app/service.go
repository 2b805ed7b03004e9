// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/memix/memix/internal/pkg/ai"
	"github.com/memix/memix/internal/pkg/config"
	apperrors "github.com/memix/memix/internal/pkg/errors"
	"github.com/memix/memix/internal/pkg/git"
	"github.com/memix/memix/internal/pkg/message"
	"github.com/memix/memix/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// User-facing text of the commit flow.
const (
	MsgNoStagedChanges  = "No staged changes found."
	MsgGenerationFailed = "Failed to generate commit message."
	MsgGenerating       = "Generating commit message..."
	MsgCommitting       = "Committing..."
	PromptUseMessage    = "Use this commit message?"
	MsgCommitCreated    = "Commit created!"
	MsgCommitCancelled  = "Commit cancelled."
	MsgDryRun           = "Dry run: nothing was committed."
)

// State is a step of the commit flow. The flow only moves forward:
// Start, DiffRead, Generating, Confirming, Committing, Done, with Abort
// reachable from every step before Done.
type State int

const (
	StateStart State = iota
	StateDiffRead
	StateGenerating
	StateConfirming
	StateCommitting
	StateDone
	StateAbort
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateDiffRead:
		return "DiffRead"
	case StateGenerating:
		return "Generating"
	case StateConfirming:
		return "Confirming"
	case StateCommitting:
		return "Committing"
	case StateDone:
		return "Done"
	case StateAbort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// RunOptions contains options for one run of the commit flow.
type RunOptions struct {
	// DryRun stops after displaying the message.
	DryRun bool
	// OutputFile receives the message in dry-run mode. Setting it implies DryRun.
	OutputFile string
}

// CommitService runs the staged diff → suggestion → confirmation → commit flow.
type CommitService struct {
	gitClient  git.Client
	aiProvider ai.Provider
	uiManager  ui.Manager
	config     *config.Config
	state      State
}

// NewCommitService creates a new CommitService with the given dependencies.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	uiManager ui.Manager,
	cfg *config.Config,
) *CommitService {
	return &CommitService{
		gitClient:  gitClient,
		aiProvider: aiProvider,
		uiManager:  uiManager,
		config:     cfg,
		state:      StateStart,
	}
}

// State returns the step the last run ended in.
func (s *CommitService) State() State {
	return s.state
}

func (s *CommitService) transition(to State) {
	apperrors.LogStateTransition(s.state.String(), to.String())
	s.state = to
}

// Run executes the commit flow once.
//
// An empty diff, a failed generation and a rejected suggestion are normal
// endings: they are reported through the UI and Run returns nil. Repository
// failures and an interrupted prompt are returned as AppErrors.
func (s *CommitService) Run(ctx context.Context, opts *RunOptions) error {
	if opts == nil {
		opts = &RunOptions{}
	}
	if opts.OutputFile != "" {
		opts.DryRun = true
	}

	s.state = StateStart

	diff, err := s.readDiff(ctx)
	if err != nil {
		s.transition(StateAbort)
		return err
	}
	s.transition(StateDiffRead)

	if diff == "" {
		s.uiManager.ShowError(MsgNoStagedChanges)
		s.uiManager.ShowInfo(apperrors.NewNoStagedChangesError().Suggestion)
		s.transition(StateAbort)
		return nil
	}

	s.transition(StateGenerating)
	msg, ok := s.generate(ctx, diff)
	if !ok {
		s.uiManager.ShowError(MsgGenerationFailed)
		s.transition(StateAbort)
		return nil
	}

	s.warn(msg)
	if err := s.uiManager.DisplayMessage(msg); err != nil {
		s.transition(StateAbort)
		return err
	}

	if opts.DryRun {
		if opts.OutputFile != "" {
			if err := s.writeToFile(opts.OutputFile, msg); err != nil {
				s.transition(StateAbort)
				return err
			}
		} else {
			s.uiManager.ShowInfo(MsgDryRun)
		}
		s.transition(StateDone)
		return nil
	}

	s.transition(StateConfirming)
	accepted, err := s.uiManager.PromptConfirm(PromptUseMessage)
	if err != nil {
		s.transition(StateAbort)
		if apperrors.HasCode(err, apperrors.ErrInput) {
			return err
		}
		return apperrors.NewInputError(err)
	}
	if !accepted {
		s.uiManager.ShowInfo(MsgCommitCancelled)
		s.transition(StateAbort)
		return nil
	}

	s.transition(StateCommitting)
	if err := s.commit(ctx, msg); err != nil {
		s.transition(StateAbort)
		return err
	}

	s.uiManager.ShowSuccess(MsgCommitCreated)
	s.transition(StateDone)
	return nil
}

func (s *CommitService) readDiff(ctx context.Context) (string, error) {
	inRepo, err := s.gitClient.IsRepository(ctx)
	if err != nil {
		return "", err
	}
	if !inRepo {
		return "", apperrors.NewRepositoryError(git.ErrNotRepository, git.ErrNotRepository.Error())
	}

	diff, err := s.gitClient.StagedDiff(ctx)
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		return "", apperrors.NewRepositoryError(err, "")
	}
	return diff, nil
}

// generate asks the provider once. The second result is false when no
// usable message came back; the cause is logged, not returned.
func (s *CommitService) generate(ctx context.Context, diff string) (string, bool) {
	if s.config != nil {
		apperrors.Debug("generating with provider=%s profile=%s diff=%d bytes",
			s.config.Provider.Name, s.config.Provider.Profile, len(diff))
	}

	spinner := s.uiManager.ShowSpinner(MsgGenerating)
	spinner.Start()
	resp, err := s.aiProvider.GenerateCommitMessage(ctx, &ai.GenerateRequest{Diff: diff})
	spinner.Stop()

	if err != nil {
		apperrors.Debug("generation with %s failed: %v", s.aiProvider.Name(), err)
		return "", false
	}
	if resp == nil || resp.Message == "" {
		apperrors.Debug("generation with %s returned no message", s.aiProvider.Name())
		return "", false
	}

	apperrors.Debug("generated %d chars with %s (%d tokens)", len(resp.Message), resp.Model, resp.TotalTokens)
	return resp.Message, true
}

// warn shows inspection findings. They never block the commit.
func (s *CommitService) warn(msg string) {
	result := message.Inspect(msg)
	for _, warning := range result.Warnings {
		s.uiManager.ShowWarning(warning)
	}
}

// commit runs detached from ctx cancellation: once issued, an interrupt must
// not kill git halfway through its hooks.
func (s *CommitService) commit(ctx context.Context, msg string) error {
	spinner := s.uiManager.ShowSpinner(MsgCommitting)
	spinner.Start()
	err := s.gitClient.Commit(context.WithoutCancel(ctx), msg)
	spinner.Stop()

	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.NewRepositoryError(err, "")
}

// writeToFile writes the commit message to a file.
func (s *CommitService) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content+"\n"), 0644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystem, fmt.Sprintf("failed to write to file %s", filePath))
	}

	s.uiManager.ShowSuccess(fmt.Sprintf("Message written to %s", filePath))
	return nil
}
