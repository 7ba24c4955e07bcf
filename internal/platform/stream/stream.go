package stream

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// deliveryPool runs callback-subscriber notifications so a slow consumer
// never blocks a publisher. Shared across all streams in the process.
var (
	deliveryPoolOnce sync.Once
	deliveryPool     *ants.Pool
)

func pool() *ants.Pool {
	deliveryPoolOnce.Do(func() {
		deliveryPool, _ = ants.NewPool(8, ants.WithNonblocking(false))
	})
	return deliveryPool
}

// Stream is a latest-value broadcast primitive: every subscriber observes the
// current value immediately and subsequent published values afterwards.
// Intermediate values may be conflated away for a slow subscriber; the last
// published value is always delivered.
type Stream[T any] struct {
	mu     sync.Mutex
	latest T
	subs   map[int]chan T
	cbs    map[int]*callbackSub[T]
	nextID int
}

func New[T any](initial T) *Stream[T] {
	return &Stream[T]{
		latest: initial,
		subs:   make(map[int]chan T),
		cbs:    make(map[int]*callbackSub[T]),
	}
}

// Latest returns the current value synchronously.
func (s *Stream[T]) Latest() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Publish replaces the current value and notifies all subscribers.
func (s *Stream[T]) Publish(value T) {
	s.mu.Lock()
	s.latest = value
	channels := make([]chan T, 0, len(s.subs))
	for _, ch := range s.subs {
		channels = append(channels, ch)
	}
	callbacks := make([]*callbackSub[T], 0, len(s.cbs))
	for _, cs := range s.cbs {
		callbacks = append(callbacks, cs)
	}
	s.mu.Unlock()

	for _, ch := range channels {
		conflate(ch, value)
	}
	for _, cs := range callbacks {
		cs.enqueue(value)
	}
}

// Subscribe returns a channel that replays the latest value and then carries
// published updates. The subscription ends, and the channel is released, when
// ctx is done.
func (s *Stream[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.latest
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()

	return ch
}

// SubscribeFunc invokes fn with the latest value and every later published
// value. Invocations for one subscriber are serialized and conflated; they
// run on the shared delivery pool.
func (s *Stream[T]) SubscribeFunc(ctx context.Context, fn func(T)) {
	cs := &callbackSub[T]{fn: fn}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.cbs[id] = cs
	latest := s.latest
	s.mu.Unlock()

	cs.enqueue(latest)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.cbs, id)
		s.mu.Unlock()
	}()
}

// conflate delivers value on a capacity-1 channel, displacing an undelivered
// older value instead of blocking.
func conflate[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

type callbackSub[T any] struct {
	mu      sync.Mutex
	pending *T
	running bool
	fn      func(T)
}

func (c *callbackSub[T]) enqueue(value T) {
	c.mu.Lock()
	c.pending = &value
	start := !c.running
	if start {
		c.running = true
	}
	c.mu.Unlock()

	if !start {
		return
	}
	if p := pool(); p == nil || p.Submit(c.drain) != nil {
		go c.drain()
	}
}

func (c *callbackSub[T]) drain() {
	for {
		c.mu.Lock()
		if c.pending == nil {
			c.running = false
			c.mu.Unlock()
			return
		}
		value := *c.pending
		c.pending = nil
		c.mu.Unlock()

		c.fn(value)
	}
}
