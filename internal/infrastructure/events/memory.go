package events

import (
	"context"
	"sync"

	"github.com/clearbill/payments/internal/domain"
)

// MemoryPublisher collects events in memory. Used in development and in
// tests that assert on published events.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(ctx context.Context, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}
