package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pkt.systems/promptdeck/core"
)

// ScriptedAdapter replies from a canned list without any backend. It serves
// demos and smoke tests where no provider is installed.
type ScriptedAdapter struct {
	// Replies cycle in order; empty means an echo reply.
	Replies []string
	// Delay simulates provider latency.
	Delay time.Duration

	mu   sync.Mutex
	next int
}

// Send returns the next canned reply.
func (a *ScriptedAdapter) Send(ctx context.Context, req core.SendRequest) (core.SendResult, error) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return core.SendResult{}, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Replies) == 0 {
		return core.SendResult{Content: fmt.Sprintf("echo: %s", req.Prompt)}, nil
	}
	reply := a.Replies[a.next%len(a.Replies)]
	a.next++
	return core.SendResult{Content: reply}, nil
}
