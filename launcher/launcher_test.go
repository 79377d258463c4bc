//go:build unix

package launcher

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// ============================================================================
// PROCESS GROUP LIFECYCLE
// ============================================================================

func shell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh in PATH")
	}
	return path
}

func TestBrowser_OpenStartsOwnGroup(t *testing.T) {
	b := &Browser{Path: shell(t), Args: []string{"-c", "sleep 30; echo"}, Core: -1}

	p, err := b.Open("unused")
	require.NoError(t, err)

	pgid, err := unix.Getpgid(p.Pid())
	require.NoError(t, err)
	assert.Equal(t, p.Pid(), pgid, "leader heads its own group")
	assert.NotEqual(t, unix.Getpgrp(), pgid)

	require.NoError(t, p.Stop())
	assert.NoError(t, p.Stop(), "second stop is a no-op")
}

func TestBrowser_StopKillsChildren(t *testing.T) {
	// The leader forks a grandchild; killing the group must take both.
	b := &Browser{Path: shell(t), Args: []string{"-c", "sleep 30 & wait"}, Core: -1}

	p, err := b.Open("unused")
	require.NoError(t, err)
	pgid := p.Pid()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Stop())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := unix.Kill(-pgid, 0); err == unix.ESRCH {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("process group %d still alive", pgid)
}

func TestBrowser_MissingExecutable(t *testing.T) {
	b := &Browser{Path: "/nonexistent/memorygram-browser", Core: -1}
	_, err := b.Open("https://www.example.com/")
	assert.Error(t, err)
}

func TestNewBrowser_Defaults(t *testing.T) {
	b := NewBrowser("", 2)
	assert.Equal(t, "google-chrome", b.Path)
	assert.Equal(t, []string{"--new-window"}, b.Args)
	assert.Equal(t, 2, b.Core)
}
