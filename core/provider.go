package core

import (
	"context"

	"pkt.systems/promptdeck/schema"
)

// Adapter turns a prompt into a provider response. Implementations own their
// transport, retry policy, and timeouts; every call must eventually settle.
type Adapter interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// SendRequest describes one outbound prompt.
type SendRequest struct {
	SessionID schema.SessionID
	Provider  schema.ProviderID
	Prompt    string
}

// SendResult is a settled provider response.
type SendResult struct {
	Content string
	// TouchedFiles names resources the provider's agent actions touched,
	// fed into conflict detection.
	TouchedFiles []string
}

// AdapterProvider resolves a provider identity to an adapter.
type AdapterProvider interface {
	AdapterFor(ctx context.Context, provider schema.ProviderID) (Adapter, error)
}

// StaticAdapterProvider serves one adapter for every provider identity.
// Useful in tests.
type StaticAdapterProvider struct {
	Adapter Adapter
}

// AdapterFor returns the configured adapter.
func (p StaticAdapterProvider) AdapterFor(_ context.Context, _ schema.ProviderID) (Adapter, error) {
	if p.Adapter == nil {
		return nil, schema.ErrAdapterUnavailable
	}
	return p.Adapter, nil
}
