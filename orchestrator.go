package promptdeck

import (
	"context"
	"path/filepath"

	"pkt.systems/promptdeck/core"
	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/internal/eventbus"
	"pkt.systems/promptdeck/internal/health"
	"pkt.systems/promptdeck/internal/persist"
	"pkt.systems/promptdeck/internal/providers"
	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

// Orchestrator wires the provider registry, transcript store, event bus, and
// core service into one runnable unit.
type Orchestrator struct {
	cfg      appconfig.Config
	svc      core.Service
	bus      *eventbus.Bus
	registry *providers.Registry
	checker  *health.Checker
	store    *persist.Store
	log      pslog.Logger
}

// Deps captures optional dependency overrides for New.
type Deps struct {
	Logger pslog.Logger
	// Adapters overrides the registry built from configuration.
	Adapters core.AdapterProvider
	// ExtraSinks receive core events alongside the event bus.
	ExtraSinks []core.EventSink
}

// New builds an Orchestrator from configuration.
func New(cfg appconfig.Config, deps Deps) (*Orchestrator, error) {
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	adapters := deps.Adapters
	var registry *providers.Registry
	if adapters == nil {
		built, err := providers.FromConfig(cfg.Providers, cfg.Service.DefaultProvider, logger)
		if err != nil {
			return nil, err
		}
		registry = built
		adapters = built
	}

	var store *persist.Store
	if cfg.StateDir != "" {
		built, err := persist.NewStoreWithLogger(filepath.Join(cfg.StateDir, "transcripts"), logger)
		if err != nil {
			return nil, err
		}
		store = built
	}

	bus := eventbus.New(logger)
	sinks := append([]core.EventSink{bus}, deps.ExtraSinks...)

	svc, err := core.NewService(cfg.ServiceSettings(), core.ServiceDeps{
		Adapters:    adapters,
		EventSink:   eventFanout{sinks: sinks},
		Transcripts: store,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker(logger)
	for _, p := range cfg.Providers {
		switch p.Kind {
		case "exec":
			checker.Register(p.Name, health.BinaryProbe{Binary: p.Command})
		case "ollama":
			endpoint := p.Endpoint
			if endpoint == "" {
				endpoint = providers.DefaultOllamaEndpoint
			}
			checker.Register(p.Name, health.HTTPProbe{URL: endpoint + "/api/tags"})
		}
	}

	return &Orchestrator{
		cfg:      cfg,
		svc:      svc,
		bus:      bus,
		registry: registry,
		checker:  checker,
		store:    store,
		log:      logger,
	}, nil
}

// Service returns the core service.
func (o *Orchestrator) Service() core.Service {
	return o.svc
}

// Subscribe attaches an event consumer; the cancel function detaches it.
func (o *Orchestrator) Subscribe() (<-chan eventbus.Event, func()) {
	return o.bus.Subscribe()
}

// Health probes the configured provider backends.
func (o *Orchestrator) Health(ctx context.Context) []health.Result {
	return o.checker.CheckAll(ctx)
}

// Providers lists configured provider identities.
func (o *Orchestrator) Providers() []schema.ProviderID {
	if o.registry != nil {
		return o.registry.Names()
	}
	names := make([]schema.ProviderID, 0, len(o.cfg.Providers))
	for _, p := range o.cfg.Providers {
		names = append(names, schema.ProviderID(p.Name))
	}
	return names
}

// Transcript loads a saved transcript for a session, if any.
func (o *Orchestrator) Transcript(sessionID schema.SessionID) (persist.Transcript, bool, error) {
	if o.store == nil {
		return persist.Transcript{}, false, nil
	}
	return o.store.Load(sessionID)
}
