package probe

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for operations that need Unix process semantics
// on platforms that lack them.
var ErrUnsupported = errors.New("probe: unsupported on this platform")

// ForkFailure reports that the operating system refused to create the next
// generation. It is returned to the generation that attempted the fork.
type ForkFailure struct {
	// Generation is the index of the generation that could not be created.
	Generation int
	Err        error
}

func (e *ForkFailure) Error() string {
	return fmt.Sprintf("fork %s (generation %d): %v", Role(e.Generation), e.Generation, e.Err)
}

func (e *ForkFailure) Unwrap() error {
	return e.Err
}

// IsForkFailure reports whether err carries a ForkFailure.
func IsForkFailure(err error) bool {
	var ff *ForkFailure
	return errors.As(err, &ff)
}
