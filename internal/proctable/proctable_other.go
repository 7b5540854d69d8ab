//go:build !linux

package proctable

// Lookup is only implemented on Linux.
func Lookup(pid int) (Entry, error) {
	return Entry{}, ErrUnsupported
}
