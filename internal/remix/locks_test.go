package remix

import (
	"errors"
	"testing"
)

func TestBoardLocksRejectContention(t *testing.T) {
	locks := NewBoardLocks()
	release, err := locks.Acquire("b1")
	if err != nil {
		t.Fatal(err)
	}
	if !locks.Busy("b1") {
		t.Fatal("board must report busy while held")
	}
	if _, err := locks.Acquire("b1"); !errors.Is(err, ErrBoardBusy) {
		t.Fatalf("got %v, want ErrBoardBusy", err)
	}
	// A different board is independent.
	r2, err := locks.Acquire("b2")
	if err != nil {
		t.Fatal(err)
	}
	r2()
	release()
	if locks.Busy("b1") {
		t.Fatal("release must free the board")
	}
	if _, err := locks.Acquire("b1"); err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
}

func TestBoardLocksReleaseIsIdempotent(t *testing.T) {
	locks := NewBoardLocks()
	r1, _ := locks.Acquire("b1")
	r1()
	r2, _ := locks.Acquire("b1")
	// A stale second call on the first release must not free the new holder.
	r1()
	if !locks.Busy("b1") {
		t.Fatal("stale release must be a no-op")
	}
	r2()
}
