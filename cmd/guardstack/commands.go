package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/mholzen/guardstack/pkg/format"
	"github.com/mholzen/guardstack/pkg/mcp"
	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/stack"
	"github.com/mholzen/guardstack/pkg/workbench"
)

// CommandDeps carries the filesystem and writers commands use, so tests can
// substitute in-memory ones.
type CommandDeps struct {
	Fs          afero.Fs
	Output      io.Writer
	Diagnostics io.Writer
}

func defaultDeps() CommandDeps {
	return CommandDeps{
		Fs:          afero.NewOsFs(),
		Output:      os.Stdout,
		Diagnostics: os.Stderr,
	}
}

func getCommands() []*cli.Command {
	deps := defaultDeps()
	return []*cli.Command{
		getRunCommandWithDeps(deps),
		getDrillCommandWithDeps(deps),
		getFaultsCommand(),
		getTypesCommand(),
		getRenderersCommand(),
		getMcpCommand(),
		getVersionCommand(),
	}
}

func getRunCommandWithDeps(deps CommandDeps) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run stack operations and report each outcome",
		UsageText: "guardstack run [options] [<op>...]",
		Description: `Operations are init:N, push:V, pop, top, validate, destroy, dump and inject:FAULT.
They run in order; a failing operation is reported and the run continues.

Examples:
  guardstack run init:5 push:10 push:7 pop destroy push:3
  guardstack run --capacity=3 --type=uint8 --render=char push:65 top
  guardstack run --script=drill.gs --format=json`,
		Flags: getStackFlags(
			getCapacityFlag(0, "Initialize with this capacity before the first operation (0 to skip)"),
			&cli.StringFlag{
				Name:  "script",
				Usage: "Read operations from this file ('#' starts a comment)",
			},
			getFormatFlag(),
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "Dump the stack after the last operation",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outputFormat := cmd.String("format")
			if err := validateFormat(outputFormat); err != nil {
				return err
			}

			ops, err := collectOps(cmd, deps.Fs)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				return fmt.Errorf("no operations given")
			}

			cfg, err := getSessionConfig(cmd, deps.Diagnostics)
			if err != nil {
				return err
			}
			session, err := workbench.New(cfg)
			if err != nil {
				return err
			}

			steps := workbench.Run(session, ops, deps.Output)
			failed := lo.CountBy(steps, workbench.Step.Failed)

			if outputFormat == "json" {
				printJSONToWriter(deps.Output, runReport{Steps: steps, Stack: session.Snapshot()})
			} else {
				printSteps(deps.Output, steps)
				fmt.Fprintf(deps.Output, "%d operations, %d failed, final state %s\n", len(steps), failed, session.Snapshot().State)
			}

			if cmd.Bool("dump") {
				session.Dump(deps.Output)
			}
			return nil
		},
	}
}

func collectOps(cmd *cli.Command, fs afero.Fs) ([]workbench.Op, error) {
	var ops []workbench.Op
	if capacity := cmd.Int("capacity"); capacity > 0 {
		ops = append(ops, workbench.Op{Kind: workbench.OpInit, Arg: strconv.Itoa(capacity)})
	}

	if path := cmd.String("script"); path != "" {
		scripted, err := workbench.LoadScript(fs, path)
		if err != nil {
			return nil, err
		}
		ops = append(ops, scripted...)
	}

	inline, err := workbench.ParseOps(cmd.Args().Slice())
	if err != nil {
		return nil, err
	}
	return append(ops, inline...), nil
}

func getDrillCommandWithDeps(deps CommandDeps) *cli.Command {
	return &cli.Command{
		Name:      "drill",
		Usage:     "Inject a fault into a filled stack and report whether validation catches it",
		UsageText: "guardstack drill --fault=<fault> [options]",
		Flags: getStackFlags(
			&cli.StringFlag{
				Name:     "fault",
				Aliases:  []string{"f"},
				Usage:    "Fault to inject (see 'guardstack faults')",
				Required: true,
			},
			getCapacityFlag(4, "Stack capacity"),
			&cli.IntFlag{
				Name:  "fill",
				Value: 2,
				Usage: "Number of elements pushed before the fault",
			},
			getFormatFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outputFormat := cmd.String("format")
			if err := validateFormat(outputFormat); err != nil {
				return err
			}

			fault, err := stack.ParseFault(cmd.String("fault"))
			if err != nil {
				return err
			}

			capacity := cmd.Int("capacity")
			fill := cmd.Int("fill")
			if fill < 0 || fill > capacity {
				return fmt.Errorf("fill must be between 0 and the capacity (%d)", capacity)
			}

			cfg, err := getSessionConfig(cmd, io.Discard)
			if err != nil {
				return err
			}
			session, err := workbench.New(cfg)
			if err != nil {
				return err
			}

			if err := session.Init(capacity); err != nil {
				return err
			}
			for i := 1; i <= fill; i++ {
				if err := session.Push(strconv.Itoa(i)); err != nil {
					return err
				}
			}
			if err := session.Inject(fault); err != nil {
				return err
			}

			violation := session.Validate()
			report := drillReport{
				Fault:     fault.String(),
				Violation: violation.String(),
				Detected:  violation != stack.OK,
				Stack:     session.Snapshot(),
			}

			if outputFormat == "json" {
				printJSONToWriter(deps.Output, report)
				return nil
			}
			printDrill(deps.Output, report)
			session.Dump(deps.Output)
			return nil
		},
	}
}

func getFaultsCommand() *cli.Command {
	return &cli.Command{
		Name:      "faults",
		Usage:     "List injectable faults",
		UsageText: "guardstack faults",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, f := range stack.Faults() {
				fmt.Fprintf(cmd.Root().Writer, "%-16s %s\n", f, f.Description())
			}
			return nil
		},
	}
}

func getTypesCommand() *cli.Command {
	return &cli.Command{
		Name:      "types",
		Usage:     "List supported element types",
		UsageText: "guardstack types",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, strings.Join(workbench.Types(), "\n"))
			return nil
		},
	}
}

func getRenderersCommand() *cli.Command {
	return &cli.Command{
		Name:      "renderers",
		Usage:     "List element renderers",
		UsageText: "guardstack renderers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, strings.Join(format.ListBuiltins(), "\n"))
			return nil
		},
	}
}

func getMcpCommand() *cli.Command {
	return &cli.Command{
		Name:      "mcp",
		Usage:     "Run as MCP server (stdio transport)",
		UsageText: "guardstack mcp [options]",
		Description: `Start an MCP server holding one stack session.

The server communicates via stdio using the Model Context Protocol (MCP).

Tool groups:
  read   Validate, Inspect, Dump and Top tools
  write  Create, Init, Push, Pop and Destroy tools
  fault  Inject tool
  all    All available tools (default)

Examples:
  guardstack mcp                            # All tools
  guardstack mcp --expose=read,write        # No fault injection
  guardstack mcp --type=uint8 --render=char # Defaults for the session`,
		Flags: getStackFlags(
			&cli.StringFlag{
				Name:  "expose",
				Value: "all",
				Usage: "Tools to expose: read, write, fault, all, or comma-separated tool names",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, err := protection.Parse(cmd.String("protection"))
			if err != nil {
				return err
			}
			serverConfig := mcp.Config{
				Expose:     cmd.String("expose"),
				Type:       cmd.String("type"),
				Protection: level,
				Render:     cmd.String("render"),
				Version:    version,
			}
			return mcp.RunServer(ctx, serverConfig)
		},
	}
}

func getVersionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "Show version information",
		UsageText: "guardstack version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			fmt.Fprintf(w, "guardstack version %s\n", version)
			fmt.Fprintf(w, "commit: %s\n", commit)
			fmt.Fprintf(w, "built: %s\n", date)
			return nil
		},
	}
}
