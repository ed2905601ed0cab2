package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reviewpulse/internal/events"
	"reviewpulse/internal/worker"
)

var heartbeatInterval time.Duration

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the saved Google Apps Script web app URL",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Validate and save the web app URL (must end with /exec)",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookSet,
}

var webhookShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved web app URL",
	Args:  cobra.NoArgs,
	RunE:  runWebhookShow,
}

var logCmd = &cobra.Command{
	Use:   "log [event] [variant]",
	Short: "Send one event to the web app",
	Long: `Sends a single event to the saved web app URL.

Events:
  cta_click A|B - a click on CTA variant A or B
  heartbeat     - a liveness ping`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLog,
}

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Send heartbeat events until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runHeartbeat,
}

var clientIDCmd = &cobra.Command{
	Use:   "client-id",
	Short: "Print the persisted client id, creating it if needed",
	Args:  cobra.NoArgs,
	RunE:  runClientID,
}

func runWebhookSet(cmd *cobra.Command, args []string) error {
	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	status, err := a.SaveWebhookURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", status, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

func runWebhookShow(cmd *cobra.Command, args []string) error {
	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := a.WebhookURL(cmd.Context())
	if err != nil {
		return err
	}
	if u == "" {
		u = cfg.Events.WebhookURL
	}
	if u == "" {
		return events.ErrMissingWebhookURL
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	name, variant := args[0], ""
	if len(args) > 1 {
		variant = args[1]
	}
	if err := events.ValidateEvent(name, variant); err != nil {
		return err
	}

	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	status, err := a.LogEvent(cmd.Context(), name, variant, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", status, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

func runHeartbeat(cmd *cobra.Command, args []string) error {
	interval := heartbeatInterval
	if interval <= 0 {
		interval = cfg.Events.Heartbeat
	}
	if interval <= 0 {
		return fmt.Errorf("invalid heartbeat interval %s", interval)
	}

	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	hb := worker.NewHeartbeat(a, interval, logger.Named("heartbeat"))
	logger.Info("heartbeat started")
	hb.Start(ctx)

	sent, failed := hb.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d, failed %d\n", sent, failed)
	return nil
}

func runClientID(cmd *cobra.Command, args []string) error {
	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := a.ClientID(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
