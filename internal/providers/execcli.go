package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"pkt.systems/promptdeck/core"
	"pkt.systems/pslog"
)

// ExecConfig controls how a CLI provider is invoked.
type ExecConfig struct {
	Command string
	Args    []string
	Env     []string
	// Timeout bounds one invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// ExecAdapter runs a local CLI per prompt, feeding the prompt on stdin and
// returning trimmed stdout as the reply.
type ExecAdapter struct {
	cfg ExecConfig
}

// NewExecAdapter constructs an ExecAdapter.
func NewExecAdapter(cfg ExecConfig) (*ExecAdapter, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, fmt.Errorf("exec adapter: command is required")
	}
	return &ExecAdapter{cfg: cfg}, nil
}

// Send runs one CLI invocation.
func (a *ExecAdapter) Send(ctx context.Context, req core.SendRequest) (core.SendResult, error) {
	log := pslog.Ctx(ctx)
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, a.cfg.Command, a.cfg.Args...)
	if len(a.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), a.cfg.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return core.SendResult{}, err
	}
	start := time.Now()
	log.Debug("provider exec start", "command", a.cfg.Command, "prompt_len", len(req.Prompt))
	if err := cmd.Start(); err != nil {
		log.Error("provider exec start failed", "err", err)
		return core.SendResult{}, err
	}
	go func() {
		_, _ = io.WriteString(stdin, req.Prompt)
		_ = stdin.Close()
	}()
	if err := cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		log.Warn("provider exec failed", "command", a.cfg.Command, "err", msg)
		return core.SendResult{}, fmt.Errorf("%s: %s", a.cfg.Command, msg)
	}
	log.Debug("provider exec done", "command", a.cfg.Command, "ms", time.Since(start).Milliseconds())
	return core.SendResult{Content: strings.TrimSpace(stdout.String())}, nil
}
