// Package locks serializes mutations of a single delivery, either inside one
// process or across server instances through Redis.
package locks

import (
	"context"
	"sync"

	"deliverytracker/internal/core/domain/model/kernel"
)

// MemoryLocker implements ports.DeliveryLocker for a single process.
// Entries are dropped once nobody holds or waits for them.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[kernel.UUID]*slot
}

type slot struct {
	token chan struct{}
	refs  int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[kernel.UUID]*slot)}
}

func (l *MemoryLocker) Lock(ctx context.Context, deliveryID kernel.UUID) (func(), error) {
	s := l.acquireSlot(deliveryID)

	select {
	case s.token <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(deliveryID)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.token
			l.releaseSlot(deliveryID)
		})
	}, nil
}

func (l *MemoryLocker) acquireSlot(id kernel.UUID) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[id]
	if !ok {
		s = &slot{token: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) releaseSlot(id kernel.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.slots[id]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

// Len reports how many deliveries are currently locked or awaited.
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
