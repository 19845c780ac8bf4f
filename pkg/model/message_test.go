package model

import "testing"

func TestThreadKey(t *testing.T) {
	a := "6653f1a2b3c4d5e6f7a8b9c0"
	b := "6653f1a2b3c4d5e6f7a8b9c1"

	if ThreadKey(a, b) != ThreadKey(b, a) {
		t.Errorf("ThreadKey must be order independent: %q vs %q", ThreadKey(a, b), ThreadKey(b, a))
	}
	if want := a + "_" + b; ThreadKey(b, a) != want {
		t.Errorf("ThreadKey(b, a) = %q, want %q", ThreadKey(b, a), want)
	}
}
