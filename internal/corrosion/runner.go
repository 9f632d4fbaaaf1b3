// Package corrosion invokes the external corrosion binary and captures its
// output for decoding.
//
// Invocation is synchronous: each call runs one subcommand to completion
// and hands the full stdout back as a string. There is no supervision or
// retry here; a failed command surfaces as a CommandError and the caller
// decides what to do with it.
package corrosion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Env vars consulted when no explicit paths are given.
const (
	EnvBinary = "CORROSION_BIN"
	EnvConfig = "CORROSION_CONFIG"
)

// CommandError reports a corrosion invocation that exited nonzero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("corrosion %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Runner invokes corrosion subcommands against one binary/config pair.
type Runner struct {
	Binary     string
	ConfigPath string
	Log        zerolog.Logger
}

// NewRunner validates the binary path and returns a Runner. An empty
// binary falls back to CORROSION_BIN and then to PATH lookup; an empty
// configPath falls back to CORROSION_CONFIG.
func NewRunner(binary, configPath string, log zerolog.Logger) (*Runner, error) {
	resolved, err := ResolveBinary(binary)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	return &Runner{Binary: resolved, ConfigPath: configPath, Log: log}, nil
}

// ResolveBinary locates the corrosion binary: explicit path, then
// CORROSION_BIN, then PATH. Explicit and env paths must exist and be
// executable.
func ResolveBinary(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvBinary)
	}
	if path == "" {
		found, err := exec.LookPath("corrosion")
		if err != nil {
			return "", fmt.Errorf("corrosion binary not found: set --binary, %s, or add corrosion to PATH", EnvBinary)
		}
		return found, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("corrosion binary %s: %w", path, err)
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		return "", fmt.Errorf("corrosion binary %s is not executable", path)
	}
	return path, nil
}

// ClusterMembers runs `corrosion cluster members` and returns its raw
// stdout. The output is typically concatenated JSON objects, one per
// member; single-node clusters produce no output at all.
func (r *Runner) ClusterMembers(ctx context.Context) (string, error) {
	return r.run(ctx, "cluster", "members")
}

// ClusterInfo runs `corrosion cluster info`.
func (r *Runner) ClusterInfo(ctx context.Context) (string, error) {
	return r.run(ctx, "cluster", "info")
}

// Query runs a read-only SQL statement through `corrosion query` with JSON
// row output.
func (r *Runner) Query(ctx context.Context, sql string) (string, error) {
	return r.run(ctx, "query", "--columns", sql)
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	full := args
	if r.ConfigPath != "" {
		full = append([]string{"--config", r.ConfigPath}, args...)
	}

	r.Log.Debug().Str("binary", r.Binary).Strs("args", full).Msg("invoking corrosion")

	cmd := exec.CommandContext(ctx, r.Binary, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := 1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		r.Log.Debug().Int("exit_code", exitCode).Msg("corrosion failed")
		return "", &CommandError{Args: args, ExitCode: exitCode, Stderr: stderr.String()}
	}

	r.Log.Debug().Int("stdout_bytes", stdout.Len()).Msg("corrosion succeeded")
	return stdout.String(), nil
}
