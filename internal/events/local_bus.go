package events

import (
	"context"
	"fmt"
	"sync"
)

// LocalBus fans events out to in-process subscribers synchronously.
type LocalBus struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]Handler
	closed bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: map[int]Handler{}}
}

func (b *LocalBus) Publish(ctx context.Context, ev TypeChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("local bus closed")
	}
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, onEvent Handler) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("local bus closed")
	}
	id := b.next
	b.next++
	b.subs[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]Handler{}
	return nil
}
