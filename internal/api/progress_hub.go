package api

import (
	"strings"
	"sync"
)

// progressHub fans status lines out to websocket subscribers per board.
type progressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[string]map[chan string]struct{})}
}

func hubKey(ownerID, boardID string) string {
	return strings.TrimSpace(ownerID) + "\x00" + strings.TrimSpace(boardID)
}

func (h *progressHub) subscribe(ownerID, boardID string) chan string {
	ch := make(chan string, 16)
	key := hubKey(ownerID, boardID)
	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan string]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *progressHub) unsubscribe(ownerID, boardID string, ch chan string) {
	key := hubKey(ownerID, boardID)
	h.mu.Lock()
	if set := h.subs[key]; set != nil {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
	close(ch)
}

// publish drops messages for slow subscribers rather than blocking the
// generation pipeline.
func (h *progressHub) publish(ownerID, boardID, message string) {
	key := hubKey(ownerID, boardID)
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[key] {
		select {
		case ch <- message:
		default:
		}
	}
}
