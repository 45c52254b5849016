package api

import "sync"

// ProgressEvent is one unit of solve progress fanned out to SSE and
// WebSocket subscribers.
type ProgressEvent struct {
	SolveID    string  `json:"solveId"`
	Type       string  `json:"type"`
	Generation int     `json:"generation,omitempty"`
	BestCost   float64 `json:"bestCost,omitempty"`
	AvgCost    float64 `json:"avgCost,omitempty"`
}

// EventBroker fans solve progress out to subscribers. The in-memory Broker
// serves a single process; RedisBroker spans instances.
type EventBroker interface {
	Subscribe(solveID string) chan ProgressEvent
	Unsubscribe(solveID string, ch chan ProgressEvent)
	Publish(solveID string, evt ProgressEvent)
}

type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan ProgressEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan ProgressEvent]struct{}{}}
}

func (b *Broker) Subscribe(solveID string) chan ProgressEvent {
	ch := make(chan ProgressEvent, 8)
	b.mu.Lock()
	if b.subs[solveID] == nil {
		b.subs[solveID] = map[chan ProgressEvent]struct{}{}
	}
	b.subs[solveID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(solveID string, ch chan ProgressEvent) {
	b.mu.Lock()
	if m := b.subs[solveID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, solveID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish never blocks; slow subscribers drop events.
func (b *Broker) Publish(solveID string, evt ProgressEvent) {
	b.mu.Lock()
	for ch := range b.subs[solveID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
