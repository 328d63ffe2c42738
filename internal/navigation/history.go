// Package navigation provides a browser-like history of paths. Push adds an
// entry without notifying anyone, mirroring pushState; Back and Forward move
// through entries and notify subscribers with the new path, mirroring popstate.
package navigation

import (
	"strings"
	"sync"
)

// Root is the path of a fresh draft.
const Root = "/"

// History is an in-memory path stack with subscriber fan-out.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
	subs    map[chan string]struct{}
	closed  bool
}

// NewHistory creates a history whose only entry is initial.
func NewHistory(initial string) *History {
	return &History{
		entries: []string{Clean(initial)},
		subs:    make(map[chan string]struct{}),
	}
}

// Clean normalizes p to a rooted path without a trailing slash.
func Clean(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return Root
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return Root
		}
	}
	return p
}

// KeyOf returns the paste key a path refers to, or "" for the root path.
func KeyOf(p string) string {
	return strings.TrimPrefix(Clean(p), "/")
}

// PathOf returns the path for key.
func PathOf(key string) string {
	return Clean(key)
}

// Current returns the path of the current entry.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Push appends p after the current entry, discarding any forward entries.
// Pushing the current path again is a no-op. Subscribers are not notified.
func (h *History) Push(p string) {
	p = Clean(p)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.index] == p {
		return
	}
	h.entries = append(h.entries[:h.index+1], p)
	h.index++
}

// Replace overwrites the current entry. Subscribers are not notified.
func (h *History) Replace(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = Clean(p)
}

// Back moves one entry back and notifies subscribers. It reports false when
// already at the first entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward and notifies subscribers. It reports false
// when already at the last entry.
func (h *History) Forward() bool {
	return h.move(1)
}

// Go notifies subscribers with p as if the user had navigated there, and
// pushes it. Used for typed addresses.
func (h *History) Go(p string) {
	p = Clean(p)
	h.mu.Lock()
	if h.entries[h.index] != p {
		h.entries = append(h.entries[:h.index+1], p)
		h.index++
	}
	h.notifyLocked(p)
	h.mu.Unlock()
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		return false
	}
	h.index = next
	h.notifyLocked(h.entries[next])
	return true
}

func (h *History) notifyLocked(p string) {
	for ch := range h.subs {
		select {
		case ch <- p:
		default:
			// Subscriber is not keeping up; the next event supersedes this one.
		}
	}
}

// Subscribe returns a channel receiving every path reached by Back, Forward or Go.
func (h *History) Subscribe() chan string {
	ch := make(chan string, 64)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes ch and closes it.
func (h *History) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Close closes all subscriber channels. Later subscriptions receive a closed channel.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = make(map[chan string]struct{})
}
