package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/promptdeck"
	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/internal/eventbus"
	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

func newChatCmd() *cobra.Command {
	var cfgPath string
	var provider string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive multi-session chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			orch, err := promptdeck.New(cfg, promptdeck.Deps{Logger: pslog.Ctx(cmd.Context())})
			if err != nil {
				return err
			}
			repl := &chatREPL{
				orch: orch,
				out:  cmd.OutOrStdout(),
				in:   cmd.InOrStdin(),
			}
			return repl.run(cmd.Context(), schema.ProviderID(provider))
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider for the first session")
	return cmd
}

type chatREPL struct {
	orch *promptdeck.Orchestrator
	out  io.Writer
	in   io.Reader

	active schema.SessionID
}

func (r *chatREPL) run(ctx context.Context, provider schema.ProviderID) error {
	svc := r.orch.Service()
	created, err := svc.CreateSession(ctx, schema.CreateSessionRequest{Provider: provider})
	if err != nil {
		return err
	}
	r.active = created.Session.ID
	fmt.Fprintf(r.out, "session %s ready (provider %s). /help lists commands.\n",
		created.Session.Name, created.Session.Provider)

	events, cancel := r.orch.Subscribe()
	defer cancel()
	go r.printEvents(ctx, events)

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Fprint(r.out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit", line == "/exit":
			return nil
		case strings.HasPrefix(line, "/"):
			if err := r.command(ctx, line); err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
		default:
			if _, err := svc.SendPrompt(ctx, schema.SendPromptRequest{
				SessionID: r.active,
				Prompt:    line,
			}); err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
		}
		fmt.Fprint(r.out, "> ")
	}
	return scanner.Err()
}

// printEvents renders assistant replies and status changes as they settle.
func (r *chatREPL) printEvents(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case eventbus.EventMessage:
				msg := event.Message.Message
				if msg.Role == schema.RoleUser {
					continue
				}
				marker := ""
				if event.Message.SessionID != r.active {
					marker = fmt.Sprintf(" [%s]", event.Message.SessionID)
				}
				fmt.Fprintf(r.out, "\n%s%s: %s\n> ", msg.Role, marker, msg.Content)
			case eventbus.EventConflict:
				conflict := event.Conflict.Conflict
				fmt.Fprintf(r.out, "\nconflict: %s touched by %d sessions\n> ",
					conflict.Path, len(conflict.Sessions))
			}
		}
	}
}

func (r *chatREPL) command(ctx context.Context, line string) error {
	svc := r.orch.Service()
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	switch fields[0] {
	case "/help":
		fmt.Fprintln(r.out, "/new [provider], /close, /switch <name>, /rename <name>, /sessions, /stats, /conflicts, /ack, /history, /quit")
		return nil
	case "/new":
		resp, err := svc.CreateSession(ctx, schema.CreateSessionRequest{Provider: schema.ProviderID(arg)})
		if err != nil {
			return err
		}
		if _, err := svc.ActivateSession(ctx, schema.ActivateSessionRequest{SessionID: resp.Session.ID}); err != nil {
			return err
		}
		r.active = resp.Session.ID
		fmt.Fprintf(r.out, "created %s (provider %s)\n", resp.Session.Name, resp.Session.Provider)
		return nil
	case "/close":
		target := r.active
		if arg != "" {
			id, err := r.resolve(ctx, arg)
			if err != nil {
				return err
			}
			target = id
		}
		resp, err := svc.CloseSession(ctx, schema.CloseSessionRequest{SessionID: target})
		if err != nil {
			return err
		}
		list, err := svc.ListSessions(ctx, schema.ListSessionsRequest{})
		if err != nil {
			return err
		}
		r.active = list.ActiveSession
		fmt.Fprintf(r.out, "closed %s\n", resp.Session.Name)
		return nil
	case "/switch":
		if arg == "" {
			return errors.New("usage: /switch <name>")
		}
		id, err := r.resolve(ctx, arg)
		if err != nil {
			return err
		}
		resp, err := svc.ActivateSession(ctx, schema.ActivateSessionRequest{SessionID: id})
		if err != nil {
			return err
		}
		r.active = resp.Session.ID
		fmt.Fprintf(r.out, "switched to %s\n", resp.Session.Name)
		return nil
	case "/rename":
		if arg == "" {
			return errors.New("usage: /rename <name>")
		}
		resp, err := svc.RenameSession(ctx, schema.RenameSessionRequest{
			SessionID: r.active,
			Name:      schema.SessionName(arg),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "renamed to %s\n", resp.Session.Name)
		return nil
	case "/sessions":
		resp, err := svc.ListSessions(ctx, schema.ListSessionsRequest{})
		if err != nil {
			return err
		}
		for _, sess := range resp.Sessions {
			flags := make([]string, 0, 4)
			if sess.Active {
				flags = append(flags, "active")
			}
			if sess.Loading {
				flags = append(flags, "loading")
			}
			if sess.Unread {
				flags = append(flags, "unread")
			}
			if sess.Conflict {
				flags = append(flags, "conflict")
			}
			if sess.QueuedCount > 0 {
				flags = append(flags, fmt.Sprintf("queued=%d", sess.QueuedCount))
			}
			fmt.Fprintf(r.out, "%-24s %-10s %s\n", sess.Name, sess.Provider, strings.Join(flags, ","))
		}
		return nil
	case "/stats":
		resp, err := svc.QueueStats(ctx, schema.QueueStatsRequest{})
		if err != nil {
			return err
		}
		s := resp.Stats
		fmt.Fprintf(r.out, "queued=%d processing=%d completed=%d failed=%d avg_wait=%.0fms avg_process=%.0fms\n",
			s.TotalQueued, s.Processing, s.CompletedToday, s.FailedToday, s.AverageWaitMs, s.AverageProcessMs)
		return nil
	case "/conflicts":
		resp, err := svc.ListConflicts(ctx, schema.ListConflictsRequest{})
		if err != nil {
			return err
		}
		if len(resp.Conflicts) == 0 {
			fmt.Fprintln(r.out, "no open conflicts")
			return nil
		}
		for _, conflict := range resp.Conflicts {
			fmt.Fprintf(r.out, "%s: %d sessions since %s\n",
				conflict.Path, len(conflict.Sessions), conflict.DetectedAt.Format("15:04:05"))
		}
		return nil
	case "/ack":
		if _, err := svc.AcknowledgeConflict(ctx, schema.AcknowledgeConflictRequest{SessionID: r.active}); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "conflict acknowledged")
		return nil
	case "/history":
		resp, err := svc.GetHistory(ctx, schema.GetHistoryRequest{SessionID: r.active})
		if err != nil {
			return err
		}
		for _, entry := range resp.Entries {
			fmt.Fprintln(r.out, entry)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

// resolve maps a session name or id to its id.
func (r *chatREPL) resolve(ctx context.Context, ref string) (schema.SessionID, error) {
	resp, err := r.orch.Service().ListSessions(ctx, schema.ListSessionsRequest{})
	if err != nil {
		return "", err
	}
	for _, sess := range resp.Sessions {
		if string(sess.ID) == ref || string(sess.Name) == ref {
			return sess.ID, nil
		}
	}
	return "", schema.ErrSessionNotFound
}
