package route

import (
	"strings"
	"sync"
	"time"

	"pkt.systems/promptdeck/schema"
)

// TaskType classifies what a prompt is asking for.
type TaskType string

const (
	// TaskCodeGeneration covers writing or editing code.
	TaskCodeGeneration TaskType = "code_generation"
	// TaskLongContext covers whole-project analysis requests.
	TaskLongContext TaskType = "long_context"
	// TaskBackground covers deferred or scheduled work.
	TaskBackground TaskType = "background"
	// TaskSymbolic covers symbol lookup and refactoring.
	TaskSymbolic TaskType = "symbolic"
	// TaskSystem covers shell and build operations.
	TaskSystem TaskType = "system"
	// TaskSecurity covers audit and vulnerability work.
	TaskSecurity TaskType = "security"
	// TaskGeneral is the fallback classification.
	TaskGeneral TaskType = "general"
)

// keyword tables, checked in order; the first matching class wins.
var taskPatterns = []struct {
	task     TaskType
	patterns []string
}{
	{TaskCodeGeneration, []string{
		"write code", "implement", "create function", "add method",
		"generate", "code",
	}},
	{TaskLongContext, []string{
		"entire codebase", "all files", "full repository",
		"analyze everything", "deep dive", "comprehensive",
	}},
	{TaskBackground, []string{
		"in background", "async", "asynchronously", "later", "schedule",
	}},
	{TaskSymbolic, []string{
		"find symbol", "references", "refactor", "rename", "call graph",
	}},
	{TaskSystem, []string{
		"run command", "execute", "terminal", "shell", "bash", "install", "build",
	}},
	{TaskSecurity, []string{
		"security", "audit", "vulnerability", "pentest", "owasp",
	}},
}

// Decision records one routing outcome.
type Decision struct {
	Prompt   string
	Task     TaskType
	Provider schema.ProviderID
	At       time.Time
	Success  bool
}

// Stats summarizes past routing decisions.
type Stats struct {
	TotalRouted int
	Successful  int
	ByProvider  map[schema.ProviderID]int
}

// Router picks a provider for a prompt from its task classification.
// The table maps task types to provider names; Fallback handles the rest.
type Router struct {
	Table    map[TaskType]schema.ProviderID
	Fallback schema.ProviderID

	mu      sync.Mutex
	history []Decision
}

// New constructs a Router with the given table and fallback provider.
func New(table map[TaskType]schema.ProviderID, fallback schema.ProviderID) *Router {
	return &Router{Table: table, Fallback: fallback}
}

// Route classifies the prompt and returns the chosen provider and task type.
func (r *Router) Route(prompt string) (schema.ProviderID, TaskType) {
	task := Classify(prompt)
	provider := r.Fallback
	if p, ok := r.Table[task]; ok && p != "" {
		provider = p
	}
	r.mu.Lock()
	r.history = append(r.history, Decision{
		Prompt:   truncate(prompt, 100),
		Task:     task,
		Provider: provider,
		At:       time.Now(),
		Success:  true,
	})
	r.mu.Unlock()
	return provider, task
}

// MarkResult updates the success flag of the most recent decision.
func (r *Router) MarkResult(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return
	}
	r.history[len(r.history)-1].Success = success
}

// Stats reports aggregate routing counts.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{
		TotalRouted: len(r.history),
		ByProvider:  make(map[schema.ProviderID]int),
	}
	for _, d := range r.history {
		if d.Success {
			stats.Successful++
		}
		stats.ByProvider[d.Provider]++
	}
	return stats
}

// Classify maps a prompt to a task type by keyword matching.
func Classify(prompt string) TaskType {
	lower := strings.ToLower(prompt)
	for _, group := range taskPatterns {
		for _, p := range group.patterns {
			if strings.Contains(lower, p) {
				return group.task
			}
		}
	}
	return TaskGeneral
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
