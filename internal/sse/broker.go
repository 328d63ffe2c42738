// Package sse streams store events to HTTP clients as Server-Sent Events.
// Every frame carries an increasing id; a reconnecting client that sends
// Last-Event-ID receives the frames it missed, as far back as the replay
// window reaches.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// EventDocumentCreated announces a newly stored document.
const EventDocumentCreated = "document.created"

// Event is a typed payload to broadcast.
type Event struct {
	Type string
	Data any
}

// Created is the payload of EventDocumentCreated. Content is never sent.
type Created struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithReplay keeps the last n frames for clients resuming with Last-Event-ID.
func WithReplay(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.replay = n
		}
	}
}

// WithKeepAlive sets how often idle streams get a comment line. Zero disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

type frame struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	since uint64
}

// Broker fans events out to subscribers. Its loop goroutine owns the
// subscriber set, the id counter and the replay window; everything else
// reaches them through channels.
type Broker struct {
	bufferSize int
	replay     int
	keepAlive  time.Duration

	join   chan subscription
	leave  chan chan []byte
	events chan Event
	counts chan chan int

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBroker starts a broker whose subscribers buffer up to bufferSize frames.
func NewBroker(bufferSize int, opts ...Option) *Broker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	b := &Broker{
		bufferSize: bufferSize,
		replay:     32,
		keepAlive:  30 * time.Second,
		join:       make(chan subscription),
		leave:      make(chan chan []byte),
		events:     make(chan Event, 256),
		counts:     make(chan chan int),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	subs := make(map[chan []byte]struct{})
	var backlog []frame
	var lastID uint64

	for {
		select {
		case <-b.quit:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.join:
			subs[s.ch] = struct{}{}
			if s.since == 0 {
				continue
			}
			for _, f := range backlog {
				if f.id <= s.since {
					continue
				}
				select {
				case s.ch <- f.raw:
				default:
				}
			}

		case ch := <-b.leave:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case ev := <-b.events:
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			lastID++
			f := frame{id: lastID, raw: encode(lastID, ev.Type, payload)}
			if b.replay > 0 {
				backlog = append(backlog, f)
				if len(backlog) > b.replay {
					backlog = backlog[len(backlog)-b.replay:]
				}
			}
			for ch := range subs {
				select {
				case ch <- f.raw:
				default:
					// The subscriber is behind; it can resume with Last-Event-ID.
				}
			}

		case resp := <-b.counts:
			resp <- len(subs)
		}
	}
}

func encode(id uint64, typ string, payload []byte) []byte {
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, typ, payload))
}

func (b *Broker) closed() bool {
	select {
	case <-b.quit:
		return true
	default:
		return false
	}
}

// Close stops the loop and closes every subscriber channel. It is idempotent.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe registers a subscriber for new frames only.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeSince(0)
}

// SubscribeSince registers a subscriber and queues the retained frames with
// an id greater than lastID. A closed broker returns a closed channel.
func (b *Broker) SubscribeSince(lastID uint64) chan []byte {
	ch := make(chan []byte, b.bufferSize)
	if b.closed() {
		close(ch)
		return ch
	}
	select {
	case b.join <- subscription{ch: ch, since: lastID}:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes ch and closes it.
func (b *Broker) Unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	select {
	case b.counts <- resp:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish queues ev for every subscriber. It is a no-op once closed.
func (b *Broker) Publish(ev Event) {
	if b.closed() {
		return
	}
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// PublishCreated announces a newly stored document.
func (b *Broker) PublishCreated(key string, size int) {
	b.Publish(Event{Type: EventDocumentCreated, Data: Created{Key: key, Size: size}})
}

// ServeHTTP streams frames to one client until it disconnects or the broker
// closes (GET /events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var since uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			since = id
		}
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeSince(since)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case raw, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(raw); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
