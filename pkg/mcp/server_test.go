package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExposeList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "empty means all", raw: "", want: allTools},
		{name: "read group", raw: "read", want: []string{ToolValidate, ToolInspect, ToolDump, ToolTop}},
		{name: "fault group", raw: "fault", want: []string{ToolInject}},
		{name: "short and full names", raw: "push, stack_pop", want: []string{ToolPush, ToolPop}},
		{name: "duplicates removed", raw: "read,validate,VALIDATE", want: []string{ToolValidate, ToolInspect, ToolDump, ToolTop}},
		{name: "group then alias", raw: "fault,init", want: []string{ToolInject, ToolInit}},
		{name: "unknown", raw: "read,rewind", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExposeList(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "rewind")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupsCoverAllTools(t *testing.T) {
	var grouped []string
	grouped = append(grouped, readTools...)
	grouped = append(grouped, writeTools...)
	grouped = append(grouped, faultTools...)
	assert.ElementsMatch(t, allTools, grouped)
	assert.Len(t, aliasMap, len(allTools))
}
