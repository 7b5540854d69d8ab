package probe

import (
	"fmt"
	"strings"
)

// ProcessHandle identifies one spawned generation. The pid may be reused by
// the operating system once the process has exited and been reaped.
type ProcessHandle struct {
	PID        int
	Generation int
	ParentPID  int
}

// Role returns the display name of the generation.
func (h ProcessHandle) Role() string {
	return Role(h.Generation)
}

func (h ProcessHandle) String() string {
	return fmt.Sprintf("%s pid=%d", h.Role(), h.PID)
}

// Role names a generation the way the pid announcements do: Parent, Child,
// Grandchild, Great-grandchild, Great-great-grandchild and so on.
func Role(generation int) string {
	switch {
	case generation <= 0:
		return "Parent"
	case generation == 1:
		return "Child"
	case generation == 2:
		return "Grandchild"
	default:
		return "Great-" + strings.Repeat("great-", generation-3) + "grandchild"
	}
}
