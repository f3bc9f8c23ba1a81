package providers

import (
	"context"
	"fmt"
	"time"

	"pkt.systems/promptdeck/core"
	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/internal/route"
	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

// Registry resolves provider identities to adapters. It is populated at
// startup and read-only afterwards.
type Registry struct {
	adapters map[schema.ProviderID]core.Adapter
	log      pslog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry(logger pslog.Logger) *Registry {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Registry{
		adapters: make(map[schema.ProviderID]core.Adapter),
		log:      logger,
	}
}

// Register binds a provider identity to an adapter.
func (r *Registry) Register(id schema.ProviderID, adapter core.Adapter) {
	r.adapters[id] = adapter
}

// Names lists registered provider identities.
func (r *Registry) Names() []schema.ProviderID {
	names := make([]schema.ProviderID, 0, len(r.adapters))
	for id := range r.adapters {
		names = append(names, id)
	}
	return names
}

// AdapterFor implements core.AdapterProvider.
func (r *Registry) AdapterFor(_ context.Context, provider schema.ProviderID) (core.Adapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", provider, schema.ErrUnknownProvider)
	}
	return adapter, nil
}

// AutoAdapter routes each prompt to a concrete provider by task
// classification, then delegates.
type AutoAdapter struct {
	registry *Registry
	router   *route.Router
	log      pslog.Logger
}

// Send classifies and delegates the prompt.
func (a *AutoAdapter) Send(ctx context.Context, req core.SendRequest) (core.SendResult, error) {
	provider, task := a.router.Route(req.Prompt)
	adapter, err := a.registry.AdapterFor(ctx, provider)
	if err != nil {
		a.router.MarkResult(false)
		return core.SendResult{}, err
	}
	a.log.Debug("provider auto routed", "task", task, "provider", provider)
	req.Provider = provider
	result, err := adapter.Send(ctx, req)
	a.router.MarkResult(err == nil)
	return result, err
}

// Stats exposes the router's decision counters.
func (a *AutoAdapter) Stats() route.Stats {
	return a.router.Stats()
}

// task-to-provider conventions used when an auto provider is configured.
// Only names that are actually configured end up in the routing table.
var autoRouteConventions = map[route.TaskType][]string{
	route.TaskCodeGeneration: {"codex", "claude"},
	route.TaskSymbolic:       {"codex", "claude"},
	route.TaskSystem:         {"codex", "claude"},
	route.TaskLongContext:    {"gemini"},
	route.TaskBackground:     {"jules"},
	route.TaskSecurity:       {"claude", "codex"},
}

// FromConfig builds a Registry from provider configuration. The fallback
// names the provider auto routing defers to when no convention matches.
func FromConfig(cfgs []appconfig.ProviderConfig, fallback string, logger pslog.Logger) (*Registry, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	registry := NewRegistry(logger)
	configured := make(map[string]struct{}, len(cfgs))
	var autos []appconfig.ProviderConfig
	for _, cfg := range cfgs {
		configured[cfg.Name] = struct{}{}
		switch cfg.Kind {
		case "exec":
			adapter, err := NewExecAdapter(ExecConfig{
				Command: cfg.Command,
				Args:    cfg.Args,
				Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			})
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
			}
			registry.Register(schema.ProviderID(cfg.Name), adapter)
		case "ollama":
			adapter, err := NewOllamaAdapter(OllamaConfig{
				Endpoint: cfg.Endpoint,
				Model:    cfg.Model,
			})
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
			}
			registry.Register(schema.ProviderID(cfg.Name), adapter)
		case "scripted":
			registry.Register(schema.ProviderID(cfg.Name), &ScriptedAdapter{})
		case "auto":
			// Deferred; auto adapters need the full registry.
			autos = append(autos, cfg)
		default:
			return nil, fmt.Errorf("provider %q: unsupported kind %q", cfg.Name, cfg.Kind)
		}
	}
	for _, cfg := range autos {
		router, err := buildAutoRouter(cfgs, configured, cfg.Name, fallback)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
		}
		registry.Register(schema.ProviderID(cfg.Name), &AutoAdapter{
			registry: registry,
			router:   router,
			log:      logger.With("provider", cfg.Name),
		})
	}
	return registry, nil
}

func buildAutoRouter(cfgs []appconfig.ProviderConfig, configured map[string]struct{}, self, fallback string) (*route.Router, error) {
	table := make(map[route.TaskType]schema.ProviderID)
	for task, candidates := range autoRouteConventions {
		for _, name := range candidates {
			if _, ok := configured[name]; ok && name != self {
				table[task] = schema.ProviderID(name)
				break
			}
		}
	}
	if _, ok := configured[fallback]; !ok || fallback == self {
		fallback = ""
		for _, cfg := range cfgs {
			if cfg.Name != self && cfg.Kind != "auto" {
				fallback = cfg.Name
				break
			}
		}
	}
	if fallback == "" {
		return nil, fmt.Errorf("auto routing needs at least one concrete provider")
	}
	return route.New(table, schema.ProviderID(fallback)), nil
}
