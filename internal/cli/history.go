package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/config"
	"github.com/clutterstack/corro-cli/internal/members"
	"github.com/clutterstack/corro-cli/internal/store"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// HistoryResult is the JSON payload for history listing.
type HistoryResult struct {
	Snapshots []store.Snapshot `json:"snapshots"`
}

// SnapshotResult is the JSON payload for history show.
type SnapshotResult struct {
	Snapshot store.Snapshot      `json:"snapshot"`
	Members  []streamjson.Record `json:"members"`
}

// NewHistoryCommand creates the history command and its show subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List stored member snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum snapshots to list (0 for all)")

	show := &cobra.Command{
		Use:           "show <snapshot-id>",
		Short:         "Show the members recorded in one snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(opts, args[0], cmd)
		},
	}
	cmd.AddCommand(show)

	return cmd
}

func openHistoryStore(opts *HistoryOptions, formatter *OutputFormatter) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		formatter.Error(ErrCodeArgument, err.Error(), nil)
		return nil, cfg, WrapExitError(ExitCommandError, "loading config", err)
	}
	if cfg.SnapshotDB == "" {
		err := errors.New("no snapshot database configured: set --db or snapshot_db")
		formatter.Error(ErrCodeArgument, err.Error(), nil)
		return nil, cfg, WrapExitError(ExitCommandError, "history", err)
	}

	s, err := store.Open(cfg.SnapshotDB)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, cfg, WrapExitError(ExitCommandError, "opening snapshot database", err)
	}
	return s, cfg, nil
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	s, _, err := openHistoryStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	snaps, err := s.ListSnapshots(cmd.Context(), opts.Limit)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "listing snapshots", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Snapshots: snaps})
	}

	renderSnapshotsTable(formatter.Writer, snaps)
	return nil
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	s, cfg, err := openHistoryStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.LoadSnapshot(cmd.Context(), id)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "loading snapshot", err)
	}

	// Refresh display fields against the current clock.
	enricher := members.Enricher{WindowSeconds: cfg.WindowSeconds}
	for i := range recs {
		recs[i] = enricher.Enrich(recs[i])
	}

	if formatter.Format == "json" {
		return formatter.Success(SnapshotResult{
			Snapshot: store.Snapshot{ID: id, MemberCount: len(recs)},
			Members:  recs,
		})
	}

	renderMembersTable(formatter.Writer, recs)
	return nil
}
