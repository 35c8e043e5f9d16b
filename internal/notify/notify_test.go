package notify

import "testing"

func TestNewDisabledIsNoop(t *testing.T) {
	n := New(false, "droidlink", 5000)
	if _, ok := n.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", n)
	}
	if err := n.Notify("title", "body"); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
}
