// Package system manages the pid file used by --start and --stop.
package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

var ErrAlreadyRunning = errors.New("pid file exists, server may already be running")

type PIDFile struct {
	Path string
}

// Write records pid, refusing to overwrite an existing file.
func (p PIDFile) Write(pid int) error {
	if p.Path == "" {
		return errors.New("pid file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}

	f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyRunning, p.Path)
		}
		return fmt.Errorf("create pid file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(strconv.Itoa(pid))
	return err
}

func (p PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid in %s: %w", p.Path, err)
	}
	return pid, nil
}

func (p PIDFile) Remove() {
	if p.Path != "" {
		_ = os.Remove(p.Path)
	}
}

// Stop signals the recorded process to shut down and removes the file.
func (p PIDFile) Stop() (int, error) {
	pid, err := p.Read()
	if err != nil {
		return 0, err
	}
	if err := Terminate(pid); err != nil {
		return pid, err
	}
	p.Remove()
	return pid, nil
}

// Terminate sends SIGTERM, or kills the process on Windows.
func Terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if runtime.GOOS == "windows" {
		return proc.Kill()
	}
	return proc.Signal(syscall.SIGTERM)
}
