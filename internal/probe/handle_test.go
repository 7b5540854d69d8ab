package probe

import "testing"

func TestRole(t *testing.T) {
	cases := map[int]string{
		0: "Parent",
		1: "Child",
		2: "Grandchild",
		3: "Great-grandchild",
		4: "Great-great-grandchild",
		5: "Great-great-great-grandchild",
	}
	for generation, want := range cases {
		if got := Role(generation); got != want {
			t.Fatalf("Role(%d) = %q want %q", generation, got, want)
		}
	}
	if got, want := lowerRole(3), "great-grandchild"; got != want {
		t.Fatalf("lowerRole(3) = %q want %q", got, want)
	}
}

func TestProcessHandleString(t *testing.T) {
	h := ProcessHandle{PID: 31337, Generation: 2, ParentPID: 31336}
	if got, want := h.String(), "Grandchild pid=31337"; got != want {
		t.Fatalf("unexpected handle string: got %q want %q", got, want)
	}
}
