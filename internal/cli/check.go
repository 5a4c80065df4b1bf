package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/program"
)

// CheckResult holds static check results.
type CheckResult struct {
	File        string               `json:"file"`
	Valid       bool                 `json:"valid"`
	Diagnostics []program.Diagnostic `json:"diagnostics"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <program-file>",
		Short: "Check a program without running it",
		Long: `Check a program for unmatched brackets, unterminated block comments
and empty memory dump ranges without running it.

Errors make the command fail; warnings are reported only.

Exit codes:
  0 - No errors (warnings allowed)
  1 - One or more errors
  2 - Command error (missing file, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := program.Load(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load program", err)
	}

	diags := program.Check(src)
	if diags == nil {
		diags = []program.Diagnostic{}
	}
	result := CheckResult{
		File:        path,
		Valid:       !program.HasErrors(diags),
		Diagnostics: diags,
	}
	formatter.VerboseLog("Checked %d bytes in %s", len(src), path)

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeCheckFailed, Message: "program has errors"}
		}
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, d := range diags {
			fmt.Fprintf(w, "%s:%s\n", path, d)
		}
		if result.Valid {
			fmt.Fprintf(w, "✓ %s is valid\n", path)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s has errors", path))
	}
	return nil
}
