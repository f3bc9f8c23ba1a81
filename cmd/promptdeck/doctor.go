package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/promptdeck/internal/appconfig"
	"pkt.systems/promptdeck/internal/health"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probe configured provider backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			configPath := cfgPath
			if strings.TrimSpace(configPath) == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath, "providers", len(cfg.Providers))

			checker := health.NewChecker(logger)
			for _, p := range cfg.Providers {
				switch p.Kind {
				case "exec":
					checker.Register(p.Name, health.BinaryProbe{Binary: p.Command})
				case "ollama":
					endpoint := p.Endpoint
					if endpoint == "" {
						endpoint = "http://localhost:11434"
					}
					checker.Register(p.Name, health.HTTPProbe{URL: endpoint + "/api/tags"})
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s (no probe for kind %s)\n", p.Name, health.StatusOnline, p.Kind)
				}
			}

			failures := 0
			for _, result := range checker.CheckAll(cmd.Context()) {
				line := fmt.Sprintf("%-12s %s (%dms)", result.Name, result.Status, result.ResponseTimeMs)
				if result.Error != "" {
					line += " " + result.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				if result.Status != health.StatusOnline {
					failures++
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d provider(s) unavailable", failures)
			}
			logger.Info("doctor ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}
