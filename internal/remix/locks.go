package remix

import (
	"strings"
	"sync"
)

// BoardLocks guards each board against overlapping generations. Contended
// acquires are rejected, never queued: the UI offers retry, not a queue.
type BoardLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewBoardLocks() *BoardLocks {
	return &BoardLocks{held: make(map[string]struct{})}
}

// Acquire takes the lock for boardID or returns ErrBoardBusy. The returned
// release func is idempotent.
func (l *BoardLocks) Acquire(boardID string) (release func(), err error) {
	boardID = strings.TrimSpace(boardID)
	if l == nil || boardID == "" {
		return func() {}, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[boardID]; busy {
		return nil, ErrBoardBusy
	}
	l.held[boardID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, boardID)
			l.mu.Unlock()
		})
	}, nil
}

// Busy reports whether a generation currently holds the board.
func (l *BoardLocks) Busy(boardID string) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[strings.TrimSpace(boardID)]
	return busy
}
