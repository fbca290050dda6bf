// Package sse streams recipe cache changes to browsers as Server-Sent
// Events.
//
// Three events are sent on GET /events:
//
//	recipe.cached    the catalog row of a document that entered the cache
//	recipe.removed   {"key": ...} of a document that left it
//	catalog.updated  {"cached": n, "removed": m} since the last summary
//
// Every event carries an id. A client reconnecting with Last-Event-ID gets
// the recipe events it missed, as far back as the backlog reaches.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/starford/kondate/internal/models"
)

// Event names.
const (
	EventRecipeCached   = "recipe.cached"
	EventRecipeRemoved  = "recipe.removed"
	EventCatalogUpdated = "catalog.updated"
)

// Option configures a Broker.
type Option func(*Broker)

// WithSummaryInterval sets how often pending changes are folded into one
// catalog.updated event.
func WithSummaryInterval(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.summaryEvery = d
		}
	}
}

// WithHeartbeat sends a comment line at interval d so idle proxies keep the
// stream open. Zero disables it.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// WithBacklog sets how many recent events are kept for replay.
func WithBacklog(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.backlogSize = n
		}
	}
}

type frame struct {
	id    uint64
	event string
	data  []byte
}

func (f frame) bytes() []byte {
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", f.id, f.event, f.data))
}

type change struct {
	event string
	data  any
}

type subscription struct {
	ch     chan []byte
	lastID uint64
}

type catalogSummary struct {
	Cached  int `json:"cached"`
	Removed int `json:"removed"`
}

// Broker fans cache changes out to SSE clients. One goroutine owns the
// client set, the backlog and the pending summary.
type Broker struct {
	summaryEvery time.Duration
	heartbeat    time.Duration
	backlogSize  int

	join    chan subscription
	leave   chan chan []byte
	changes chan change
	count   chan chan int

	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. By default summaries go out every two
// seconds, 64 events are kept for replay and no heartbeat is sent.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		summaryEvery: 2 * time.Second,
		backlogSize:  64,
		join:         make(chan subscription),
		leave:        make(chan chan []byte),
		changes:      make(chan change),
		count:        make(chan chan int),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastID  uint64
		backlog []frame
		pending catalogSummary
	)

	summary := time.NewTicker(b.summaryEvery)
	defer summary.Stop()
	var heartbeat <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		heartbeat = t.C
	}

	deliver := func(msg []byte) {
		for ch := range clients {
			select {
			case ch <- msg:
			default: // client is behind; it can catch up via Last-Event-ID
			}
		}
	}
	emit := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		lastID++
		f := frame{id: lastID, event: event, data: payload}
		if b.backlogSize > 0 {
			if len(backlog) == b.backlogSize {
				copy(backlog, backlog[1:])
				backlog = backlog[:len(backlog)-1]
			}
			backlog = append(backlog, f)
		}
		deliver(f.bytes())
	}

	for {
		select {
		case <-b.done:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.join:
			clients[sub.ch] = struct{}{}
			if sub.lastID == 0 {
				continue
			}
			for _, f := range backlog {
				if f.id <= sub.lastID {
					continue
				}
				select {
				case sub.ch <- f.bytes():
				default:
				}
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changes:
			emit(c.event, c.data)
			switch c.event {
			case EventRecipeCached:
				pending.Cached++
			case EventRecipeRemoved:
				pending.Removed++
			}

		case <-summary.C:
			if pending == (catalogSummary{}) {
				continue
			}
			emit(EventCatalogUpdated, pending)
			pending = catalogSummary{}

		case <-heartbeat:
			deliver([]byte(": ping\n\n"))

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// RecipeCached announces a document that was just indexed. It returns once
// the event has been assigned its id.
func (b *Broker) RecipeCached(rec models.CachedRecipe) {
	b.send(change{event: EventRecipeCached, data: rec})
}

// RecipeRemoved announces a document that left the cache.
func (b *Broker) RecipeRemoved(key string) {
	b.send(change{event: EventRecipeRemoved, data: map[string]string{"key": key}})
}

func (b *Broker) send(c change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- c:
	case <-b.stopped:
	}
}

// Subscribe registers a client. A non-zero lastID replays backlog events
// newer than it.
func (b *Broker) Subscribe(lastID uint64) chan []byte {
	ch := make(chan []byte, 64+b.backlogSize)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- subscription{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(lastID)
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
