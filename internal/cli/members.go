package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/corrosion"
	"github.com/clutterstack/corro-cli/internal/members"
	"github.com/clutterstack/corro-cli/internal/store"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// MembersOptions holds flags for the members command.
type MembersOptions struct {
	*RootOptions
	Cached  bool
	NoStore bool
	Window  int64
}

// MembersResult is the JSON payload for the members command.
type MembersResult struct {
	Members []streamjson.Record `json:"members"`
	Summary members.Summary     `json:"summary"`
	Cached  bool                `json:"cached,omitempty"`
}

// NewMembersCommand creates the members command.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MembersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "members",
		Short: "Show cluster members with readable sync times",
		Long: `Run 'corrosion cluster members', decode the output, and show each
member with its address, ring, last sync time, and an activity marker.

A member counts as active when its last sync happened within the recency
window. Successful fetches are saved to the snapshot database (when one is
configured) so --cached can replay the most recent fetch offline.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMembers(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Cached, "cached", false, "serve the latest stored snapshot instead of invoking corrosion")
	cmd.Flags().BoolVar(&opts.NoStore, "no-store", false, "do not save this fetch as a snapshot")
	cmd.Flags().Int64Var(&opts.Window, "window", 0, "recency window in seconds (default from config, 300)")

	return cmd
}

func runMembers(opts *MembersOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		formatter.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	window := cfg.WindowSeconds
	if opts.Window > 0 {
		window = opts.Window
	}
	enricher := members.Enricher{WindowSeconds: window}

	if opts.Cached {
		return runMembersCached(opts, cmd, formatter, cfg.SnapshotDB, enricher)
	}

	runner, err := corrosion.NewRunner(cfg.Binary, cfg.CorrosionConfig, log)
	if err != nil {
		formatter.Error(ErrCodeCommand, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving corrosion", err)
	}

	raw, err := runner.ClusterMembers(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeCommand, err.Error(), nil)
		return WrapExitError(ExitFailure, "running corrosion", err)
	}

	recs, err := streamjson.Decode(raw, enricher.Enrich)
	if err != nil {
		formatter.Error(ErrCodeDecode, err.Error(), decodeErrorDetails(err))
		return WrapExitError(ExitFailure, "decoding members output", err)
	}

	if !opts.NoStore && cfg.SnapshotDB != "" {
		if err := saveSnapshot(cmd.Context(), cfg.SnapshotDB, recs, log); err != nil {
			// Snapshot history is best-effort; the live answer still stands.
			log.Warn().Err(err).Msg("could not save snapshot")
		}
	}

	return outputMembers(formatter, recs, members.Summarize(recs), false)
}

func runMembersCached(opts *MembersOptions, cmd *cobra.Command, formatter *OutputFormatter, dbPath string, enricher members.Enricher) error {
	if dbPath == "" {
		err := errors.New("no snapshot database configured: set --db or snapshot_db")
		formatter.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "members --cached", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening snapshot database", err)
	}
	defer s.Close()

	snap, recs, err := s.Latest(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "reading snapshot", err)
	}

	// Re-enrich so activity markers reflect the current clock, not the
	// clock at snapshot time.
	for i := range recs {
		recs[i] = enricher.Enrich(recs[i])
	}

	if formatter.Format == "text" {
		fmt.Fprintf(formatter.Writer, "cached snapshot %s from %s\n", snap.ID, snap.TakenAt.Format("2006-01-02 15:04:05")+" UTC")
	}
	return outputMembers(formatter, recs, members.Summarize(recs), true)
}

func outputMembers(formatter *OutputFormatter, recs []streamjson.Record, summary members.Summary, cached bool) error {
	if formatter.Format == "json" {
		return formatter.Success(MembersResult{Members: recs, Summary: summary, Cached: cached})
	}

	renderMembersTable(formatter.Writer, recs)
	fmt.Fprintf(formatter.Writer, "\n%d member(s), %d active\n", summary.Total, summary.Active)
	return nil
}

func saveSnapshot(ctx context.Context, dbPath string, recs []streamjson.Record, log zerolog.Logger) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.SaveSnapshot(ctx, recs)
	if err != nil {
		return err
	}
	log.Debug().Str("snapshot_id", snap.ID).Int("members", snap.MemberCount).Msg("snapshot saved")
	return nil
}

// decodeErrorDetails surfaces the offending chunk for JSON consumers.
func decodeErrorDetails(err error) any {
	var chunkErr *streamjson.ChunkError
	if errors.As(err, &chunkErr) {
		return map[string]string{"chunk": chunkErr.Chunk}
	}
	return nil
}
