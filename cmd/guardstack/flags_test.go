package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/workbench"
)

func TestGetStackFlags_IncludesCommandFlags(t *testing.T) {
	flags := getStackFlags(getFormatFlag())

	names := make(map[string]bool)
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok {
			names[sf.Name] = true
		}
	}
	for _, name := range []string{"type", "protection", "render", "format"} {
		assert.True(t, names[name], "getStackFlags should include %s", name)
	}
}

func TestGetSessionConfig_Defaults(t *testing.T) {
	var cfg workbench.Config
	var diag bytes.Buffer

	cmd := &cli.Command{
		Flags: getStackFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var err error
			cfg, err = getSessionConfig(c, &diag)
			return err
		},
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
	assert.Equal(t, workbench.DefaultType, cfg.Type)
	assert.Equal(t, protection.All, cfg.Protection)
	assert.Equal(t, "plain", cfg.Render)
	assert.Same(t, &diag, cfg.Diagnostics)
}

func TestGetSessionConfig_EnvironmentAndFlags(t *testing.T) {
	t.Setenv("GUARDSTACK_TYPE", "uint16")
	t.Setenv("GUARDSTACK_PROTECTION", "dump+hashing")

	var cfg workbench.Config
	cmd := &cli.Command{
		Flags: getStackFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var err error
			cfg, err = getSessionConfig(c, nil)
			return err
		},
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"test", "--render=hex"}))
	assert.Equal(t, "uint16", cfg.Type)
	assert.Equal(t, protection.Dump|protection.Hashing, cfg.Protection)
	assert.Equal(t, "hex", cfg.Render)
}

func TestGetSessionConfig_BadProtection(t *testing.T) {
	cmd := &cli.Command{
		Flags: getStackFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := getSessionConfig(c, nil)
			return err
		},
	}

	err := cmd.Run(context.Background(), []string{"test", "--protection=armor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "armor")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("markdown"))
}
