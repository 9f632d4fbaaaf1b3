package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/ntp"
)

// FormatTSResult is the JSON payload for the format-ts command.
type FormatTSResult struct {
	Packed    string `json:"packed"`
	Formatted string `json:"formatted"`
}

// NewFormatTSCommand creates the format-ts command, a debugging helper for
// corrosion's packed 64-bit timestamps.
func NewFormatTSCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format-ts <packed>",
		Short: "Render a packed 64-bit timestamp as a calendar time",
		Long: `Corrosion encodes instants as one 64-bit integer: the high 32 bits
are Unix epoch seconds, the low 32 bits are a fraction of a second over
2^32. format-ts prints the calendar rendering, or "Invalid timestamp" when
the argument is not integer-shaped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormatTS(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runFormatTS(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	// json.Number keeps the parsing rules identical to values arriving
	// inside decoded records.
	formatted := ntp.Format(json.Number(arg))

	if formatter.Format == "json" {
		return formatter.Success(FormatTSResult{Packed: arg, Formatted: formatted})
	}

	fmt.Fprintln(formatter.Writer, formatted)
	return nil
}
