package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// File guards against a second daemon instance by recording the running
// PID on disk. Create fails when the recorded process is still alive and
// silently replaces stale files left behind by a crash.
type File struct {
	path string
	pid  int
}

func New(path string) *File {
	return &File{path: path, pid: os.Getpid()}
}

// Create writes the current PID, refusing when another live instance owns
// the file.
func (f *File) Create() error {
	if pid, err := f.read(); err == nil {
		if processAlive(pid) {
			return fmt.Errorf("already running with PID %d", pid)
		}
		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("remove stale PID file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(strconv.Itoa(f.pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	return nil
}

// Remove deletes the file, but only when it still records our own PID.
func (f *File) Remove() error {
	pid, err := f.read()
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return os.Remove(f.path)
	}
	if pid != f.pid {
		return fmt.Errorf("PID file owned by %d, not removing", pid)
	}
	return os.Remove(f.path)
}

func (f *File) Path() string {
	return f.path
}

func (f *File) read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file contents: %w", err)
	}
	return pid, nil
}

// processAlive probes the PID with signal 0. os.FindProcess never fails
// on Unix, so the signal result is the real check.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
