package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/corrosion"
	"github.com/clutterstack/corro-cli/internal/members"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Window int64
}

// StatusResult is the JSON payload for the status command.
type StatusResult struct {
	Summary       members.Summary `json:"summary"`
	WindowSeconds int64           `json:"window_seconds"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "One-line cluster health summary",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Window, "window", 0, "recency window in seconds (default from config, 300)")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
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

	enricher := members.Enricher{WindowSeconds: window}
	recs, err := streamjson.Decode(raw, enricher.Enrich)
	if err != nil {
		formatter.Error(ErrCodeDecode, err.Error(), decodeErrorDetails(err))
		return WrapExitError(ExitFailure, "decoding members output", err)
	}

	summary := members.Summarize(recs)
	if formatter.Format == "json" {
		return formatter.Success(StatusResult{Summary: summary, WindowSeconds: window})
	}

	fmt.Fprintf(formatter.Writer, "%d of %d member(s) active within %ds\n",
		summary.Active, summary.Total, window)
	return nil
}
