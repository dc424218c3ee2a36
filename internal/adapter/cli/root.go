package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/store"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrReviewFailed indicates the review session ended in the Failed stage.
var ErrReviewFailed = errors.New("review failed")

// Manager defines the session operations the CLI drives.
type Manager interface {
	Session() domain.ReviewSession
	Submit(ctx context.Context, rawURL string) (domain.ReviewSession, error)
	Approve(ctx context.Context) (domain.ReviewSession, error)
	Reject() (domain.ReviewSession, error)
}

// ServerRunner starts the web shell and blocks until it exits.
type ServerRunner interface {
	ListenAndServe(addr string) error
}

// Arguments encapsulates IO streams injected from the host process.
type Arguments struct {
	InReader  io.Reader
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Manager           Manager
	Server            ServerRunner
	History           store.Store
	Args              Arguments
	DefaultListenAddr string
	Version           string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "guardian",
		Short: "Human-approved PR review assistant",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	inReader := deps.Args.InReader
	if inReader == nil {
		inReader = os.Stdin
	}
	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetIn(inReader)
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps.Manager))
	root.AddCommand(serveCommand(deps.Server, deps.DefaultListenAddr))
	root.AddCommand(historyCommand(deps.History))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func reviewCommand(manager Manager) *cobra.Command {
	var autoApprove bool

	cmd := &cobra.Command{
		Use:   "review <pull-request-url>",
		Short: "Draft a review comment for a pull request and post it after approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			state, err := manager.Submit(ctx, args[0])
			if err != nil {
				return err
			}
			printNewEntries(out, state.Transcript, 0)

			if state.Stage == domain.StageFailed {
				return fmt.Errorf("%w: %s", ErrReviewFailed, state.ErrorMessage)
			}
			if state.Stage != domain.StageAwaitingApproval {
				return nil
			}
			seen := len(state.Transcript)

			approved, err := resolveApproval(cmd, autoApprove)
			if err != nil {
				return err
			}

			if !approved {
				state, err = manager.Reject()
				if err != nil {
					return err
				}
				printNewEntries(out, state.Transcript, seen)
				return nil
			}

			state, err = manager.Approve(ctx)
			if err != nil {
				return err
			}
			printNewEntries(out, state.Transcript, seen)
			if state.Stage == domain.StageFailed {
				return fmt.Errorf("%w: %s", ErrReviewFailed, state.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "Post the draft without prompting for approval")

	return cmd
}

// resolveApproval decides whether to post the draft. With --yes the draft is
// posted immediately. Otherwise the user is prompted; a non-interactive
// stdin without --yes rejects the draft rather than hanging.
func resolveApproval(cmd *cobra.Command, autoApprove bool) (bool, error) {
	if autoApprove {
		return true, nil
	}
	if !IsInteractive() && cmd.InOrStdin() == os.Stdin {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "stdin is not a terminal; pass --yes to post without a prompt")
		return false, nil
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Post this comment to the pull request? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func serveCommand(server ServerRunner, defaultAddr string) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review session over a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == nil {
				return errors.New("web shell is not configured")
			}
			return server.ListenAndServe(listenAddr)
		},
	}

	if defaultAddr == "" {
		defaultAddr = ":8080"
	}
	cmd.Flags().StringVar(&listenAddr, "listen", defaultAddr, "Address for the web shell to listen on")

	return cmd
}

func historyCommand(history store.Store) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished review sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if history == nil {
				return errors.New("session history is disabled; enable the store in guardian.yaml")
			}

			records, err := history.ListSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				_, _ = fmt.Fprintln(out, "no recorded sessions")
				return nil
			}

			for _, record := range records {
				_, _ = fmt.Fprintf(out, "%s  %s#%d  %s\n",
					record.StartedAt.Format("2006-01-02 15:04:05"),
					record.Repository,
					record.Number,
					describeRecord(record),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")

	return cmd
}

func describeRecord(record store.SessionRecord) string {
	switch {
	case record.Stage == domain.StageDone && record.Outcome == domain.OutcomePosted:
		return "posted"
	case record.Stage == domain.StageDone:
		return "cancelled"
	case record.FailureKind != "":
		return fmt.Sprintf("failed (%s)", record.FailureKind)
	default:
		return string(record.Stage)
	}
}

// printNewEntries writes transcript entries added since the last snapshot.
func printNewEntries(out io.Writer, transcript []domain.TranscriptEntry, seen int) {
	for _, entry := range transcript[seen:] {
		prefix := "you"
		if entry.Actor == domain.ActorAssistant {
			prefix = "guardian"
		}
		_, _ = fmt.Fprintf(out, "[%s] %s\n", prefix, entry.Text)
	}
}
