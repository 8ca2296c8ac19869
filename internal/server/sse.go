package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// sseReplaySize is the number of recent events kept for Last-Event-ID
	// replay.
	sseReplaySize = 1000

	// sseKeepaliveInterval is how often an idle stream gets a comment line.
	sseKeepaliveInterval = 15 * time.Second

	// sseClientBuffer is the per-client queue length. Events for a full
	// queue are dropped.
	sseClientBuffer = 64
)

// sseEvent is one catalog event as delivered to stream clients.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// sseHub fans catalog events out to connected stream clients and remembers
// the most recent ones for reconnecting clients.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	lastID  uint64

	ring  [sseReplaySize]sseEvent
	next  int // next write position in ring
	count int // valid entries in ring
}

// sseClient is a single connected stream consumer.
type sseClient struct {
	topics []string // topic patterns, empty = all
	ch     chan *sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast assigns the next event id, stores the event for replay and
// offers it to every matching client without blocking.
func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	h.ring[h.next] = sseEvent{ID: h.lastID, Topic: topic, Data: payload}
	evt := &h.ring[h.next]
	h.next = (h.next + 1) % sseReplaySize
	if h.count < sseReplaySize {
		h.count++
	}

	// Clients get a copy; the ring slot is reused once it wraps.
	out := *evt
	for c := range h.clients {
		if !c.matchesTopic(topic) {
			continue
		}
		select {
		case c.ch <- &out:
		default:
		}
	}
}

// subscribe registers a client. Call unsubscribe when done.
func (h *sseHub) subscribe(topics []string) *sseClient {
	c := &sseClient{topics: topics, ch: make(chan *sseEvent, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns the retained events with an id greater than lastID,
// oldest first.
func (h *sseHub) eventsSince(lastID uint64) []sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []sseEvent
	start := (h.next - h.count + sseReplaySize) % sseReplaySize
	for i := 0; i < h.count; i++ {
		evt := h.ring[(start+i)%sseReplaySize]
		if evt.ID > lastID {
			out = append(out, evt)
		}
	}
	return out
}

// matchesTopic reports whether any of the client's patterns matches topic.
// A client without patterns matches everything.
func (c *sseClient) matchesTopic(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, p := range c.topics {
		if matchTopicPattern(p, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" matches one segment, a trailing ">" matches one or more.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	pat := strings.Split(pattern, ".")
	top := strings.Split(topic, ".")
	for i, p := range pat {
		if p == ">" {
			return i < len(top)
		}
		if i >= len(top) || (p != "*" && p != top[i]) {
			return false
		}
	}
	return len(pat) == len(top)
}

// parseTopics splits a comma-separated topics query value.
func parseTopics(q string) []string {
	var topics []string
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

// handleEventStream handles GET /v1/events/stream?topics=a,b.
func (s *CatalogServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client := s.sseHub.subscribe(parseTopics(r.URL.Query().Get("topics")))
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if v := r.Header.Get("Last-Event-ID"); v != "" {
		if lastID, err := strconv.ParseUint(v, 10, 64); err == nil {
			for _, evt := range s.sseHub.eventsSince(lastID) {
				if client.matchesTopic(evt.Topic) {
					writeSSEEvent(w, &evt)
				}
			}
			flusher.Flush()
		}
	}

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single event in text/event-stream framing.
func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}
