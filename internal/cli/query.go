package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/corrosion"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// QueryResult is the JSON payload for the query command.
type QueryResult struct {
	Rows []streamjson.Record `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL statement through corrosion",
		Long: `Pass a SQL statement to 'corrosion query' and decode the resulting
rows. Corrosion emits rows as JSON; corro-cli accepts a single object, an
array, or concatenated objects and prints one row per line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, sql string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		formatter.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	runner, err := corrosion.NewRunner(cfg.Binary, cfg.CorrosionConfig, log)
	if err != nil {
		formatter.Error(ErrCodeCommand, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving corrosion", err)
	}

	raw, err := runner.Query(cmd.Context(), sql)
	if err != nil {
		formatter.Error(ErrCodeCommand, err.Error(), nil)
		return WrapExitError(ExitFailure, "running corrosion query", err)
	}

	rows, err := streamjson.Decode(raw, nil)
	if err != nil {
		formatter.Error(ErrCodeDecode, err.Error(), decodeErrorDetails(err))
		return WrapExitError(ExitFailure, "decoding query output", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(QueryResult{Rows: rows})
	}

	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return WrapExitError(ExitFailure, "rendering row", err)
		}
		fmt.Fprintln(formatter.Writer, string(line))
	}
	return nil
}
