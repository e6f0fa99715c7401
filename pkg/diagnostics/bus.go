// Package diagnostics collects failure evidence: browser console and
// network events, screenshots, and state dumps. Events flow through an
// in-process bus and are retained in a bounded buffer; nothing is
// written anywhere until a scenario actually fails, at which point the
// runner drains the buffer deterministically.
package diagnostics

import (
	"sync"
	"time"

	"github.com/cskr/pubsub"
)

// Topics published by the browser layer.
const (
	TopicConsole = "console"
	TopicNetwork = "network"
)

const busCapacity = 64

// Entry is one observed browser event.
type Entry struct {
	Topic string
	Time  time.Time
	Text  string
}

// Bus fans browser events out to collectors.
type Bus struct {
	ps       *pubsub.PubSub
	mu       sync.Mutex
	shutdown bool
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{ps: pubsub.New(busCapacity)}
}

// Publish sends an event to a topic. Safe to call concurrently with
// subscriber arrival and departure; events with no subscriber are
// dropped.
func (b *Bus) Publish(topic, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shutdown {
		return
	}
	b.ps.TryPub(Entry{Topic: topic, Time: time.Now(), Text: text}, topic)
}

// subscribe returns a channel receiving events for the topics.
func (b *Bus) subscribe(topics ...string) chan interface{} {
	return b.ps.Sub(topics...)
}

// unsubscribe detaches a subscriber channel.
func (b *Bus) unsubscribe(ch chan interface{}, topics ...string) {
	b.ps.Unsub(ch, topics...)
}

// Close shuts the bus down. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shutdown {
		return
	}
	b.shutdown = true
	b.ps.Shutdown()
}

// Collector retains the most recent events from a set of topics.
type Collector struct {
	bus    *Bus
	ch     chan interface{}
	topics []string

	mu      sync.Mutex
	entries []Entry
	limit   int

	closeOnce sync.Once
	done      chan struct{}
}

// NewCollector subscribes to the topics and retains up to limit of the
// most recent events.
func NewCollector(bus *Bus, limit int, topics ...string) *Collector {
	if len(topics) == 0 {
		topics = []string{TopicConsole, TopicNetwork}
	}
	c := &Collector{
		bus:    bus,
		ch:     bus.subscribe(topics...),
		topics: topics,
		limit:  limit,
		done:   make(chan struct{}),
	}
	go c.drain()
	return c
}

func (c *Collector) drain() {
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			entry, isEntry := msg.(Entry)
			if !isEntry {
				continue
			}
			c.mu.Lock()
			c.entries = append(c.entries, entry)
			if len(c.entries) > c.limit {
				c.entries = c.entries[len(c.entries)-c.limit:]
			}
			c.mu.Unlock()
		}
	}
}

// Recent returns the retained events, oldest first.
func (c *Collector) Recent() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Close detaches the collector from the bus.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.bus.unsubscribe(c.ch, c.topics...)
	})
}
