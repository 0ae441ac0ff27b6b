package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/voice-receptionist/internal/config"
	"github.com/wolfman30/voice-receptionist/internal/contact"
	"github.com/wolfman30/voice-receptionist/internal/locator"
	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

type locateFlags struct {
	apiURL          string
	pageURL         string
	logLevel        string
	probeTimeout    string
	dispatchTimeout string
	printMetrics    bool

	registry *prometheus.Registry
}

func newRootCmd(cfg *appconfig.Config) *cobra.Command {
	flags := &locateFlags{
		apiURL:          cfg.APIURL,
		pageURL:         cfg.PageURL,
		logLevel:        "error",
		probeTimeout:    cfg.ProbeTimeout.String(),
		dispatchTimeout: cfg.DispatchTimeout.String(),
	}

	root := &cobra.Command{
		Use:   "locate",
		Short: "Find a reachable backend origin and send contact submissions to it",
		Long: `locate builds the same candidate list the website uses, probes each
candidate's /test endpoint in order and reports the first one that answers.

Examples:
  # Probe from the Vite dev server's point of view
  locate probe --page-url http://localhost:5173

  # Send a demo request, preferring a configured API origin
  locate submit --api-url https://api.example.com --source request-demo --email jane@example.com

  # Show how many candidates failed before one answered
  locate probe --metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", flags.apiURL, "Configured backend origin, tried first (API_URL)")
	pf.StringVar(&flags.pageURL, "page-url", flags.pageURL, "URL of the page the client is served from (PAGE_URL)")
	pf.StringVar(&flags.probeTimeout, "probe-timeout", flags.probeTimeout, "Per-candidate probe timeout")
	pf.StringVar(&flags.dispatchTimeout, "dispatch-timeout", flags.dispatchTimeout, "Per-attempt delivery timeout")
	pf.StringVar(&flags.logLevel, "log-level", flags.logLevel, "Log level for probe and delivery logs (debug, info, warn, error)")
	pf.BoolVar(&flags.printMetrics, "metrics", false, "Print health-check and delivery counters in Prometheus text format when done")

	root.AddCommand(newProbeCmd(cfg, flags), newSubmitCmd(cfg, flags))
	return root
}

func (f *locateFlags) client(cfg *appconfig.Config, logOut io.Writer) (*locator.Client, error) {
	probeTimeout, err := parseDuration("probe-timeout", f.probeTimeout)
	if err != nil {
		return nil, err
	}
	dispatchTimeout, err := parseDuration("dispatch-timeout", f.dispatchTimeout)
	if err != nil {
		return nil, err
	}
	f.registry = prometheus.NewRegistry()
	return locator.NewClient(locator.Options{
		APIURL:          f.apiURL,
		PageURL:         f.pageURL,
		DevPorts:        cfg.DevPortMap,
		ProbeTimeout:    probeTimeout,
		DispatchTimeout: dispatchTimeout,
		Logger:          logging.NewWithWriter(f.logLevel, logOut),
		Metrics:         metrics.NewLocatorMetrics(f.registry),
	}), nil
}

// report writes the gathered locator counters after a command has run,
// including when it failed.
func (f *locateFlags) report(out io.Writer, runErr error) error {
	if !f.printMetrics || f.registry == nil {
		return runErr
	}
	families, err := f.registry.Gather()
	if err != nil {
		return errors.Join(runErr, fmt.Errorf("gather metrics: %w", err))
	}
	fmt.Fprintln(out)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return errors.Join(runErr, fmt.Errorf("write metrics: %w", err))
		}
	}
	return runErr
}

func newProbeCmd(cfg *appconfig.Config, flags *locateFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "List candidate origins and report the first reachable one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return flags.report(cmd.OutOrStdout(), runProbe(cmd.Context(), cmd.OutOrStdout(), client.Session))
		},
	}
}

func runProbe(ctx context.Context, out io.Writer, session *locator.Session) error {
	fmt.Fprintln(out, "Candidates:")
	for i, base := range session.Candidates() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, base)
	}

	base, err := session.Discover(ctx)
	if err != nil {
		fmt.Fprintln(out, "Selected: none")
		return err
	}
	fmt.Fprintf(out, "Selected: %s\n", base)
	return nil
}

func newSubmitCmd(cfg *appconfig.Config, flags *locateFlags) *cobra.Command {
	var sub contact.Submission
	var source string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Discover a backend and send a contact submission through it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sub.Source = contact.Source(source)
			logger := logging.NewWithWriter(flags.logLevel, cmd.ErrOrStderr())
			err = runSubmit(cmd.Context(), cmd.OutOrStdout(), client, contact.NewClient(client.Dispatcher, logger), sub)
			return flags.report(cmd.OutOrStdout(), err)
		},
	}

	f := cmd.Flags()
	f.StringVar(&source, "source", string(contact.SourceRequestDemo), "Form the submission comes from (request-demo, send-email, quick-email)")
	f.StringVar(&sub.Name, "name", "", "Contact name")
	f.StringVar(&sub.Company, "company", "", "Company name")
	f.StringVar(&sub.Email, "email", "", "Contact email")
	f.StringVar(&sub.Phone, "phone", "", "Contact phone")
	f.StringVar(&sub.Message, "message", "", "Message body")
	return cmd
}

func runSubmit(ctx context.Context, out io.Writer, client *locator.Client, sender *contact.Client, sub contact.Submission) error {
	// Delivery falls back to every candidate, so a failed discovery is
	// reported but does not stop the send.
	if base, err := client.Session.Discover(ctx); err != nil {
		if !errors.Is(err, locator.ErrNoReachableBase) {
			return err
		}
		fmt.Fprintln(out, "No candidate answered the health probe; trying each in order.")
	} else {
		fmt.Fprintf(out, "Selected: %s\n", base)
	}

	receipt, err := sender.Send(ctx, sub)
	if err != nil {
		fmt.Fprintln(out, "Delivery failed.")
		return err
	}
	fmt.Fprintf(out, "Delivered to %s", receipt.Base)
	if receipt.ID != "" {
		fmt.Fprintf(out, " (id %s)", receipt.ID)
	}
	fmt.Fprintln(out)
	return nil
}
