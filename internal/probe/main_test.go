package probe

import (
	"context"
	"fmt"
	"os"
	"testing"
)

// Forked generations re-execute the test binary; route them to Resume before
// the test framework starts.
func TestMain(m *testing.M) {
	if IsChild() {
		if err := Resume(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}
