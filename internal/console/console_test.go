package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigg3rX/mining-cli/internal/modeloop"
)

func TestSelectMode_ByNumber(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("3\n"), &out, modeloop.Modes)

	mode, err := c.SelectMode()

	require.NoError(t, err)
	assert.Equal(t, modeloop.Exit, mode)
	assert.Contains(t, out.String(), "1) mining: performs mining")
	assert.Contains(t, out.String(), "5) check-update")
}

func TestSelectMode_ByNameAfterInvalidInput(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("9\nfoo\nExport"), &out, modeloop.Modes)

	mode, err := c.SelectMode()

	require.NoError(t, err)
	assert.Equal(t, modeloop.Export, mode)
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid selection"))
}

func TestSelectMode_RestrictedMenu(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("mining\n2\n"), &out, []modeloop.RunMode{modeloop.Claim, modeloop.Exit})

	mode, err := c.SelectMode()

	require.NoError(t, err)
	assert.Equal(t, modeloop.Exit, mode)
}

func TestSelectMode_EOF(t *testing.T) {
	c := New(strings.NewReader(""), &bytes.Buffer{}, modeloop.Modes)

	_, err := c.SelectMode()

	assert.Error(t, err)
}

func TestPause_NonTerminalReadsLine(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("\n2\n"), &out, modeloop.Modes)

	c.Pause()
	mode, err := c.SelectMode()

	require.NoError(t, err)
	assert.Equal(t, modeloop.Claim, mode)
	assert.Contains(t, out.String(), "Press any key to continue...")
}
