//go:build linux

package proctable

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

var procRoot = procfs.DefaultMountPoint

// Lookup reads /proc/<pid>/stat. Zombies keep their stat file until reaped.
func Lookup(pid int) (Entry, error) {
	if pid <= 0 {
		return Entry{}, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	}
	procFS, err := procfs.NewFS(procRoot)
	if err != nil {
		return Entry{}, fmt.Errorf("open process table: %w", err)
	}
	proc, err := procFS.Proc(pid)
	if err != nil {
		return Entry{}, lookupError(pid, err)
	}
	stat, err := proc.Stat()
	if err != nil {
		return Entry{}, lookupError(pid, err)
	}
	if stat.State == "" {
		return Entry{}, fmt.Errorf("empty state in stat for pid %d", pid)
	}
	return Entry{
		PID:   pid,
		PPID:  stat.PPID,
		PGID:  stat.PGRP,
		State: State(stat.State[0]),
		Comm:  stat.Comm,
	}, nil
}

// lookupError maps a vanished process to ErrNotFound. A process reaped
// between the directory check and the read reports ESRCH.
func lookupError(pid int, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	}
	return fmt.Errorf("read stat for pid %d: %w", pid, err)
}
