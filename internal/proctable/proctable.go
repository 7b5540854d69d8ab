// Package proctable reads process state from the operating system's process
// table. It only observes; nothing here signals or reaps.
package proctable

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the pid has no process-table entry.
	ErrNotFound = errors.New("process not found")
	// ErrUnsupported is returned on platforms without a readable process table.
	ErrUnsupported = errors.New("process table not readable on this platform")
)

// State is the single letter scheduler state reported by the kernel.
type State byte

const (
	StateRunning  State = 'R'
	StateSleeping State = 'S'
	StateDisk     State = 'D'
	StateStopped  State = 'T'
	StateZombie   State = 'Z'
	StateDead     State = 'X'
)

func (s State) String() string {
	return string(s)
}

// Entry is one process-table record.
type Entry struct {
	PID   int
	PPID  int
	PGID  int
	State State
	Comm  string
}

// Zombie reports whether the process has exited but was not reaped yet.
func (e Entry) Zombie() bool {
	return e.State == StateZombie
}

// ReparentedFrom reports whether the process no longer belongs to parent.
func (e Entry) ReparentedFrom(parent int) bool {
	return e.PPID != parent
}

func (e Entry) String() string {
	return fmt.Sprintf("pid=%d ppid=%d state=%s comm=%s", e.PID, e.PPID, e.State, e.Comm)
}

// LookupAll resolves several pids, skipping the ones that have no entry.
func LookupAll(pids ...int) ([]Entry, error) {
	out := make([]Entry, 0, len(pids))
	for _, pid := range pids {
		entry, err := Lookup(pid)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
