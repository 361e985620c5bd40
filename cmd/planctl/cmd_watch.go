package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"teamplanner/internal/events"
	"teamplanner/internal/poller"
	"teamplanner/internal/state"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll engine health and metrics and print state changes",
	Long: `Poll the orchestration engine on the configured interval and print every
state change. With redis_url set, changes made by other planctl processes
(for example a running "serve") are shown as well.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	ch := a.broker.Subscribe(events.Topic)
	defer a.broker.Unsubscribe(events.Topic, ch)

	p := poller.New(a.dispatcher, cfg.PollInterval, logger)
	h := p.Start(ctx)
	defer p.Stop(h)

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.Done():
			return nil
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			if outputJSON {
				if err := printJSON(out, evt); err != nil {
					return err
				}
				continue
			}
			printEvent(out, evt, a.store.Snapshot())
		}
	}
}

func printEvent(w io.Writer, evt events.Event, st state.State) {
	switch evt.Type {
	case "health.success":
		if st.SystemHealth != nil {
			fmt.Fprintf(w, "%s health %s (version %s)\n", evt.TS, st.SystemHealth.Status, st.SystemHealth.Version)
			return
		}
	case "metrics.success":
		if st.SystemMetrics != nil {
			m := st.SystemMetrics
			fmt.Fprintf(w, "%s metrics %d orchestrations, %.1f%% success, %.1f%% coverage\n", evt.TS, m.Orchestrations.Total, m.Orchestrations.SuccessRate, m.Coverage.CoveragePercentage)
			return
		}
	}
	// events relayed from other processes have no local snapshot
	fmt.Fprintf(w, "%s %s\n", evt.TS, evt.Type)
	if msg, _ := evt.Data["error"].(string); msg != "" {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
}
