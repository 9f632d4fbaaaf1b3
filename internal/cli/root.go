// Package cli wires the corro-cli command tree.
//
// Every command follows the same path: resolve configuration (flags over
// config file over environment), invoke the corrosion binary, decode its
// output, and render the result as text or a JSON envelope.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clutterstack/corro-cli/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose         bool
	Format          string // "json" | "text"
	ConfigFile      string // corro-cli's own config file
	Binary          string // corrosion binary override
	CorrosionConfig string // corrosion --config override
	DBPath          string // snapshot database override
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for corro-cli.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "corro-cli",
		Short: "corro-cli - a friendlier face for the corrosion CLI",
		Long: `corro-cli invokes the corrosion cluster database's command-line tool,
decodes its JSON output (object, array, or concatenated objects), and
presents cluster state with readable timestamps and activity markers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose diagnostics on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config-file", "", "corro-cli config file (default ~/.config/corro-cli/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Binary, "binary", "", "path to the corrosion binary")
	cmd.PersistentFlags().StringVar(&opts.CorrosionConfig, "corrosion-config", "", "config file passed to corrosion via --config")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "snapshot database path")

	// Add subcommands
	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewFormatTSCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return cfg, err
	}
	if opts.Binary != "" {
		cfg.Binary = opts.Binary
	}
	if opts.CorrosionConfig != "" {
		cfg.CorrosionConfig = opts.CorrosionConfig
	}
	if opts.DBPath != "" {
		cfg.SnapshotDB = opts.DBPath
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger. Output always goes to the error
// stream so JSON on stdout stays machine-parsable.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}
