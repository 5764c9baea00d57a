package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr)

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
}

func TestCommands_Serve(t *testing.T) {
	t.Parallel()

	cmd := New(logger.Nop()).Serve()

	require.NotNil(t, cmd)
	assert.Equal(t, "serve", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestCommands_Fixtures(t *testing.T) {
	t.Parallel()

	cmd := New(logger.Nop()).Fixtures()

	require.NotNil(t, cmd)
	assert.Equal(t, "fixtures", cmd.Use)
	assert.Len(t, cmd.Commands(), 2)
}
