package app

import (
	"sync"

	"globetrotter-service/internal/domain"
)

// ChallengeHub fans challenge changes out to in-process subscribers keyed by code.
type ChallengeHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Challenge]struct{}
}

func NewChallengeHub() *ChallengeHub {
	return &ChallengeHub{subscribers: make(map[string]map[chan domain.Challenge]struct{})}
}

// Subscribe registers a listener for code and primes it with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *ChallengeHub) Subscribe(code string, initial domain.Challenge) (<-chan domain.Challenge, func()) {
	ch := make(chan domain.Challenge, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[code]
	if !ok {
		subs = make(map[chan domain.Challenge]struct{})
		h.subscribers[code] = subs
	}
	subs[ch] = struct{}{}
	ch <- initial
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[code]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, code)
		}
	}
	return ch, cancel
}

// Publish delivers c to every subscriber of its code. A subscriber that has
// fallen behind loses its oldest pending update rather than blocking the publisher.
func (h *ChallengeHub) Publish(c domain.Challenge) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[c.Code] {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
}

// Subscribers reports how many listeners code currently has.
func (h *ChallengeHub) Subscribers(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[code])
}
