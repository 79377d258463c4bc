//go:build !unix

package launcher

import (
	"fmt"
	"os/exec"
)

// handle is a started process; without process groups only the leader is
// reached.
type handle struct {
	cmd  *exec.Cmd
	done bool
}

// Open starts the browser. Pinning and process groups are unavailable here.
func (b *Browser) Open(url string) (Process, error) {
	args := append(append([]string(nil), b.Args...), url)
	cmd := exec.Command(b.Path, args...)
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launcher: start %s: %w", b.Path, err)
	}
	return &handle{cmd: cmd}, nil
}

func (h *handle) Pid() int { return h.cmd.Process.Pid }

// Stop kills the leader and reaps it.
func (h *handle) Stop() error {
	if h.done {
		return nil
	}
	h.done = true
	_ = h.cmd.Process.Kill()
	_ = h.cmd.Wait()
	return nil
}
