package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type testDeps struct {
	CommandDeps
	output      *bytes.Buffer
	diagnostics *bytes.Buffer
}

func newTestDeps() testDeps {
	output := &bytes.Buffer{}
	diagnostics := &bytes.Buffer{}
	return testDeps{
		CommandDeps: CommandDeps{
			Fs:          afero.NewMemMapFs(),
			Output:      output,
			Diagnostics: diagnostics,
		},
		output:      output,
		diagnostics: diagnostics,
	}
}

func TestRunCommand_RegularScenario(t *testing.T) {
	deps := newTestDeps()
	cmd := getRunCommandWithDeps(deps.CommandDeps)

	err := cmd.Run(context.Background(), []string{"run", "init:5", "push:10", "push:7", "pop", "destroy", "push:3"})
	require.NoError(t, err)

	out := deps.output.String()
	t.Logf("Output:\n%s", out)
	assert.Contains(t, out, "  4  pop -> 7")
	assert.Contains(t, out, "  6  push:3 -> error: push: stack failed validation: buffer destroyed")
	assert.Contains(t, out, "6 operations, 1 failed, final state destroyed")
	assert.Contains(t, deps.diagnostics.String(), "Validation found error #5 (buffer destroyed)")
}

func TestRunCommand_ScriptAndCapacity(t *testing.T) {
	deps := newTestDeps()
	require.NoError(t, afero.WriteFile(deps.Fs, "/drills/char.gs", []byte("# letters\npush:65\npush:66\n"), 0o644))

	cmd := getRunCommandWithDeps(deps.CommandDeps)
	err := cmd.Run(context.Background(), []string{"run", "--capacity=2", "--type=uint8", "--render=char", "--script=/drills/char.gs", "--format=json", "top"})
	require.NoError(t, err)

	var report runReport
	require.NoError(t, json.Unmarshal(deps.output.Bytes(), &report))
	require.Len(t, report.Steps, 4)
	assert.Equal(t, "init:2", report.Steps[0].Op)
	assert.Equal(t, "66 (B)", report.Steps[3].Result)
	assert.Equal(t, "uint8", report.Stack.Type)
	assert.Equal(t, []string{"65 (A)", "66 (B)"}, report.Stack.Elements)
}

func TestRunCommand_Dump(t *testing.T) {
	deps := newTestDeps()
	cmd := getRunCommandWithDeps(deps.CommandDeps)

	err := cmd.Run(context.Background(), []string{"run", "--dump", "--protection=boundary", "init:2", "push:9"})
	require.NoError(t, err)

	out := deps.output.String()
	assert.Contains(t, out, "Stack of type [int64]")
	assert.Contains(t, out, "  Leading:  0x0d15ea5e")
	assert.Contains(t, out, "# 0: 9")
}

func TestRunCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no operations", args: []string{"run"}, want: "no operations"},
		{name: "bad operation", args: []string{"run", "init:2", "shove:1"}, want: "shove"},
		{name: "bad format", args: []string{"run", "--format=xml", "pop"}, want: "format"},
		{name: "missing script", args: []string{"run", "--script=/nope.gs"}, want: "cannot open script"},
		{name: "bad type", args: []string{"run", "--type=string", "pop"}, want: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			err := getRunCommandWithDeps(deps.CommandDeps).Run(context.Background(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDrillCommand_DetectsFault(t *testing.T) {
	deps := newTestDeps()
	cmd := getDrillCommandWithDeps(deps.CommandDeps)

	err := cmd.Run(context.Background(), []string{"drill", "--fault=data-trailing"})
	require.NoError(t, err)

	out := deps.output.String()
	assert.Contains(t, out, "fault data-trailing detected: data boundary corrupted")
	assert.Contains(t, out, "  Trailing: 0x41414141")
	assert.Contains(t, out, "# 1: 2")
}

func TestDrillCommand_UndetectedWithoutProtection(t *testing.T) {
	deps := newTestDeps()
	cmd := getDrillCommandWithDeps(deps.CommandDeps)

	err := cmd.Run(context.Background(), []string{"drill", "--fault=struct-checksum", "--protection=none", "--format=json"})
	require.NoError(t, err)

	var report drillReport
	require.NoError(t, json.Unmarshal(deps.output.Bytes(), &report))
	assert.False(t, report.Detected)
	assert.Equal(t, "ok", report.Violation)
	assert.Equal(t, "none", report.Stack.Protection)
}

func TestDrillCommand_Errors(t *testing.T) {
	deps := newTestDeps()

	err := getDrillCommandWithDeps(deps.CommandDeps).Run(context.Background(), []string{"drill"})
	require.Error(t, err)

	err = getDrillCommandWithDeps(deps.CommandDeps).Run(context.Background(), []string{"drill", "--fault=bit-rot"})
	require.Error(t, err)

	err = getDrillCommandWithDeps(deps.CommandDeps).Run(context.Background(), []string{"drill", "--fault=stale-slot", "--capacity=2", "--fill=3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fill")
}

func runListing(t *testing.T, sub *cli.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := &cli.Command{
		Name:     "guardstack",
		Writer:   &out,
		Commands: []*cli.Command{sub},
	}
	require.NoError(t, root.Run(context.Background(), append([]string{"guardstack"}, args...)))
	return out.String()
}

func TestListingCommands(t *testing.T) {
	faults := runListing(t, getFaultsCommand(), "faults")
	assert.Contains(t, faults, "stale-slot")
	assert.Contains(t, faults, "data-leading")

	types := runListing(t, getTypesCommand(), "types")
	assert.Contains(t, types, "float32\n")
	assert.Contains(t, types, "uint8\n")

	renderers := runListing(t, getRenderersCommand(), "renderers")
	assert.Equal(t, "char\ngrouped\nhex\nplain\n", renderers)

	v := runListing(t, getVersionCommand(), "version")
	assert.Contains(t, v, "guardstack version dev")
}

func TestNewApp_RejectsBadLogLevel(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run(context.Background(), []string{"guardstack", "--log-level=loud", "types"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
