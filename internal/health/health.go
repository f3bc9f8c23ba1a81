package health

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"pkt.systems/pslog"
)

// Status classifies a probe outcome.
type Status string

const (
	// StatusOnline means the target answered.
	StatusOnline Status = "online"
	// StatusOffline means the target is absent or unreachable.
	StatusOffline Status = "offline"
	// StatusError means the target answered but reported a failure.
	StatusError Status = "error"
)

// Result is one provider health probe outcome.
type Result struct {
	Name           string `json:"name"`
	Status         Status `json:"status"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// Probe checks whether one provider backend is reachable.
type Probe interface {
	Check(ctx context.Context) Result
}

// DefaultCacheTTL bounds how long a probe result is reused.
const DefaultCacheTTL = 5 * time.Second

// Checker runs named probes with a short-lived result cache, so repeated
// status queries do not hammer provider backends.
type Checker struct {
	ttl time.Duration
	log pslog.Logger

	mu     sync.Mutex
	probes map[string]Probe
	cache  map[string]cached
}

type cached struct {
	result Result
	at     time.Time
}

// NewChecker constructs a Checker with the default cache TTL.
func NewChecker(logger pslog.Logger) *Checker {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Checker{
		ttl:    DefaultCacheTTL,
		log:    logger,
		probes: make(map[string]Probe),
		cache:  make(map[string]cached),
	}
}

// Register adds or replaces a named probe.
func (c *Checker) Register(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
	delete(c.cache, name)
}

// Check runs a single named probe, serving from cache when fresh.
func (c *Checker) Check(ctx context.Context, name string) Result {
	c.mu.Lock()
	probe, ok := c.probes[name]
	if !ok {
		c.mu.Unlock()
		return Result{Name: name, Status: StatusOffline, Error: "no such probe"}
	}
	if entry, hit := c.cache[name]; hit && time.Since(entry.at) < c.ttl {
		c.mu.Unlock()
		return entry.result
	}
	c.mu.Unlock()

	result := probe.Check(ctx)
	result.Name = name
	c.mu.Lock()
	c.cache[name] = cached{result: result, at: time.Now()}
	c.mu.Unlock()
	c.log.Trace("health probe", "name", name, "status", result.Status, "ms", result.ResponseTimeMs)
	return result
}

// CheckAll runs every registered probe.
func (c *Checker) CheckAll(ctx context.Context) []Result {
	c.mu.Lock()
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	c.mu.Unlock()
	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, c.Check(ctx, name))
	}
	return results
}

// BinaryProbe reports online when the named binary resolves on PATH.
type BinaryProbe struct {
	Binary string
}

// Check resolves the binary.
func (p BinaryProbe) Check(_ context.Context) Result {
	start := time.Now()
	if _, err := exec.LookPath(p.Binary); err != nil {
		return Result{Status: StatusOffline, Error: err.Error(), ResponseTimeMs: time.Since(start).Milliseconds()}
	}
	return Result{Status: StatusOnline, ResponseTimeMs: time.Since(start).Milliseconds()}
}

// HTTPProbe reports online when a GET against URL returns a 2xx status.
type HTTPProbe struct {
	URL    string
	Client *http.Client
}

// Check performs the GET.
func (p HTTPProbe) Check(ctx context.Context) Result {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Result{Status: StatusError, Error: err.Error()}
	}
	resp, err := client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return Result{Status: StatusOffline, Error: err.Error(), ResponseTimeMs: elapsed}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			Status:         StatusError,
			Error:          fmt.Sprintf("unexpected status %d", resp.StatusCode),
			ResponseTimeMs: elapsed,
		}
	}
	return Result{Status: StatusOnline, ResponseTimeMs: elapsed}
}
