package stack

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_HealthyStack(t *testing.T) {
	s, _ := newTestStack(t, protection.All)
	require.NoError(t, s.Init(5))
	require.NoError(t, s.Push(10))
	require.NoError(t, s.Push(7))

	var out bytes.Buffer
	s.Dump(&out, Unknown)
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "Stack of type [int64] [0x"))
	assert.NotContains(t, text, "Validation found error")
	assert.Contains(t, text, "  Protection: all\n")
	assert.Contains(t, text, "  State:    live\n")
	assert.Contains(t, text, "  Size:     2\n")
	assert.Contains(t, text, "  Capacity: 5\n")
	assert.Contains(t, text, "  Leading:  0x0d15ea5e\n")
	assert.Contains(t, text, "  Trailing: 0x0d15ea5e\n")
	assert.True(t, strings.HasSuffix(text, "    # 0: 10\n    # 1: 7\n"))
}

func TestDump_UsesRenderer(t *testing.T) {
	var out bytes.Buffer
	s := New(func(v uint8) string { return fmt.Sprintf("<%c>", v) }, WithLogger(quietLogger()))
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Push('A'))

	s.Dump(&out, OK)
	assert.Contains(t, out.String(), "Stack of type [uint8]")
	assert.Contains(t, out.String(), "    # 0: <A>\n")
	assert.NotContains(t, out.String(), "Leading")
}

func TestDump_OnlyLiveElements(t *testing.T) {
	s, _ := newTestStack(t, protection.None)
	require.NoError(t, s.Init(4))
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	_, err := s.Pop()
	require.NoError(t, err)

	var out bytes.Buffer
	s.Dump(&out, Unknown)
	assert.Contains(t, out.String(), "# 0: 1")
	assert.NotContains(t, out.String(), "# 1:")
}

func TestDump_DestroyedStack(t *testing.T) {
	s, _ := newTestStack(t, protection.All)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Destroy())

	var out bytes.Buffer
	s.Dump(&out, Unknown)
	text := out.String()
	assert.Contains(t, text, "Validation found error #5 (buffer destroyed)")
	assert.Contains(t, text, "  Data:     0x0\n")
	assert.Contains(t, text, "  Capacity: -1\n")
	assert.NotContains(t, text, "# 0:")
}

func TestDump_NilHandle(t *testing.T) {
	var s *Stack[float64]
	var out bytes.Buffer
	s.Dump(&out, Unknown)

	assert.Equal(t, "Stack of type [float64] [0x0]\nValidation found error #1 (handle is nil)\n", out.String())
}

func TestDump_DoesNotModify(t *testing.T) {
	s, _ := newTestStack(t, protection.All)
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Push(9))
	require.NoError(t, s.Inject(FaultStaleSlot))
	structSum, contentSum := s.StoredChecksums()

	s.Dump(&bytes.Buffer{}, Unknown)

	gotStruct, gotContent := s.StoredChecksums()
	assert.Equal(t, structSum, gotStruct)
	assert.Equal(t, contentSum, gotContent)
	assert.Equal(t, []int64{9}, s.Elements())
	assert.Equal(t, ContentChecksumMismatch, s.Check())
}

func TestValidate_WritesDumpOnFailure(t *testing.T) {
	s, diag := newTestStack(t, protection.Boundary)
	require.NoError(t, s.Init(2))
	assert.Equal(t, OK, s.Validate())
	assert.Empty(t, diag.String())

	require.NoError(t, s.Inject(FaultDataLeading))
	assert.Equal(t, DataBoundaryCorrupted, s.Validate())
	assert.Contains(t, diag.String(), "Validation found error #7 (data boundary corrupted)")
	assert.Contains(t, diag.String(), "Leading:  0x41414141")
}
