package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/config"
	"github.com/roach88/bfe/internal/console"
	"github.com/roach88/bfe/internal/program"
	"github.com/roach88/bfe/internal/runner"
)

// MachineFlags override config file settings for one command.
type MachineFlags struct {
	MemorySize     int
	CursorRollover bool
	ValueRollover  bool
	Strict         bool
	MaxSteps       int
	Input          string
	Expr           string // inline program (-e)
}

// addMachineFlags registers the machine flags. Defaults mirror
// config.Default; a flag only overrides the config file when set.
func addMachineFlags(cmd *cobra.Command, f *MachineFlags) {
	def := config.Default()
	cmd.Flags().IntVar(&f.MemorySize, "memory-size", def.Memory.Size, "number of data cells")
	cmd.Flags().BoolVar(&f.CursorRollover, "cursor-rollover", def.Memory.CursorRollover, "wrap the data cursor at either end")
	cmd.Flags().BoolVar(&f.ValueRollover, "value-rollover", def.Memory.ValueRollover, "wrap cell values at 0 and 255")
	cmd.Flags().BoolVar(&f.Strict, "strict", def.Strict, "stop on the first runtime condition")
	cmd.Flags().IntVar(&f.MaxSteps, "max-steps", def.MaxSteps, "stop after this many steps (0 = unlimited)")
	cmd.Flags().StringVar(&f.Input, "input", def.Input, "input device (terminal|stdin|none)")
	cmd.Flags().StringVarP(&f.Expr, "expr", "e", "", "program source given inline")
}

// resolveConfig loads --config and applies the flags that were set.
func resolveConfig(cmd *cobra.Command, opts *RootOptions, f *MachineFlags) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("memory-size") {
		cfg.Memory.Size = f.MemorySize
	}
	if flags.Changed("cursor-rollover") {
		cfg.Memory.CursorRollover = f.CursorRollover
	}
	if flags.Changed("value-rollover") {
		cfg.Memory.ValueRollover = f.ValueRollover
	}
	if flags.Changed("strict") {
		cfg.Strict = f.Strict
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = f.MaxSteps
	}
	if flags.Changed("input") {
		cfg.Input = f.Input
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}

	opts.logger().Debug("machine configured",
		"config", opts.Config,
		"memory_size", cfg.Memory.Size,
		"cursor_rollover", cfg.Memory.CursorRollover,
		"value_rollover", cfg.Memory.ValueRollover,
		"strict", cfg.Strict,
		"max_steps", cfg.MaxSteps,
		"input", cfg.Input,
	)
	return cfg, nil
}

// loadSource returns the program named by a file argument or -e.
func loadSource(args []string, expr string) (string, []byte, error) {
	switch {
	case len(args) > 0 && expr != "":
		return "", nil, errors.New("give a program file or -e, not both")
	case expr != "":
		return "-e", []byte(expr), nil
	case len(args) == 0:
		return "", nil, errors.New("a program file or -e is required")
	}

	src, err := program.Load(args[0])
	if err != nil {
		return "", nil, err
	}
	return args[0], src, nil
}

// openInput returns the input device for mode. Commands whose stdin has been
// replaced (tests, pipes set via SetIn) read it as a plain stream.
func openInput(cmd *cobra.Command, mode string) (console.Device, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		return console.Open(mode, f, cmd.OutOrStdout())
	}
	if mode == console.ModeNone {
		return console.None{}, nil
	}
	return console.NewReader(in), nil
}

// prepare resolves everything a command needs to execute a program.
func prepare(cmd *cobra.Command, opts *RootOptions, f *MachineFlags, args []string) (string, []byte, runner.Settings, console.Device, error) {
	name, src, err := loadSource(args, f.Expr)
	if err != nil {
		return "", nil, runner.Settings{}, nil, WrapExitError(ExitCommandError, "failed to load program", err)
	}

	cfg, err := resolveConfig(cmd, opts, f)
	if err != nil {
		return "", nil, runner.Settings{}, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	dev, err := openInput(cmd, cfg.Input)
	if err != nil {
		return "", nil, runner.Settings{}, nil, WrapExitError(ExitCommandError, "failed to open input", err)
	}

	return name, src, runner.FromConfig(cfg), dev, nil
}
