package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()
	assert.Equal(t, "watch [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup(tuiFlagName))
}

func TestWatchCmd_RejectsMissingProject(t *testing.T) {
	root := newTestProject(t)

	cmd := newWatchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(root, "does-not-exist")})

	assert.Error(t, cmd.Execute())
}

func TestWatchCmd_PersistsStateOnCancel(t *testing.T) {
	root := newTestProject(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	cmd := newWatchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{root})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.FileExists(t, filepath.Join(root, ".gpgen-state.yaml"))
}
