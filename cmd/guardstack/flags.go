package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/workbench"
)

func getStackFlags(commandFlags ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Value:   workbench.DefaultType,
			Usage:   "Element type (see 'guardstack types')",
			Sources: cli.EnvVars("GUARDSTACK_TYPE"),
		},
		&cli.StringFlag{
			Name:    "protection",
			Aliases: []string{"p"},
			Value:   "all",
			Usage:   "Protections: none, dump, boundary, hashing, all\n\tCombine with '+' or ',', e.g. dump+hashing",
			Sources: cli.EnvVars("GUARDSTACK_PROTECTION"),
		},
		&cli.StringFlag{
			Name:    "render",
			Value:   "plain",
			Usage:   "Element renderer used in dumps (see 'guardstack renderers')",
			Sources: cli.EnvVars("GUARDSTACK_RENDER"),
		},
	}
	flags = append(flags, commandFlags...)
	return flags
}

func getFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: "text",
		Usage: "Output format: text or json",
	}
}

func getCapacityFlag(defaultValue int, usage string) cli.Flag {
	return &cli.IntFlag{
		Name:    "capacity",
		Aliases: []string{"c"},
		Value:   defaultValue,
		Usage:   usage,
	}
}

func validateFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("format must be 'text' or 'json'")
	}
	return nil
}

// getSessionConfig reads the stack flags into a workbench configuration.
func getSessionConfig(cmd *cli.Command, diagnostics io.Writer) (workbench.Config, error) {
	level, err := protection.Parse(cmd.String("protection"))
	if err != nil {
		return workbench.Config{}, err
	}
	return workbench.Config{
		Type:        cmd.String("type"),
		Protection:  level,
		Render:      cmd.String("render"),
		Diagnostics: diagnostics,
		Logger:      slog.Default(),
	}, nil
}
