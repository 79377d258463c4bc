//go:build unix

package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"memorygram/affinity"
	"memorygram/debug"

	"golang.org/x/sys/unix"
)

// handle is a started process group.
type handle struct {
	cmd  *exec.Cmd
	pid  int
	done bool
}

// Open forks the browser into a new process group. The fork happens on a
// thread bound to b.Core so the child inherits the binding from its first
// instruction; the leader is pinned again once it runs.
func (b *Browser) Open(url string) (Process, error) {
	args := append(append([]string(nil), b.Args...), url)
	cmd := exec.Command(b.Path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr

	if err := b.start(cmd); err != nil {
		return nil, fmt.Errorf("launcher: start %s: %w", b.Path, err)
	}

	h := &handle{cmd: cmd, pid: cmd.Process.Pid}
	if b.Core >= 0 {
		if err := affinity.PinPID(h.pid, b.Core); err != nil {
			debug.DropError("LAUNCHER", err)
		}
	}
	return h, nil
}

// start runs cmd.Start on a dedicated, pinned OS thread. The goroutine exits
// while still locked, so the runtime retires the thread with its affinity.
func (b *Browser) start(cmd *exec.Cmd) error {
	if b.Core < 0 {
		return cmd.Start()
	}
	errc := make(chan error, 1)
	go func() {
		if _, err := affinity.PinThread(b.Core); err != nil {
			debug.DropError("LAUNCHER", err)
		}
		errc <- cmd.Start()
	}()
	return <-errc
}

func (h *handle) Pid() int { return h.pid }

// Stop sends SIGKILL to every process in the group and reaps the leader.
func (h *handle) Stop() error {
	if h.done {
		return nil
	}
	h.done = true

	if err := unix.Kill(-h.pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("launcher: kill group %d: %w", h.pid, err)
	}

	err := h.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
