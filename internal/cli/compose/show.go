package compose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/history"
	"github.com/ariel-frischer/toastkit/internal/logging"
	"github.com/ariel-frischer/toastkit/internal/platform"
	"github.com/ariel-frischer/toastkit/internal/progress"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

const (
	untilSettled = "settled"
	untilAny     = "any"
)

func newShowCmd() *cobra.Command {
	var (
		cf          contentFlags
		wait        time.Duration
		until       string
		autoDismiss time.Duration
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a toast and report what the user did with it",
		Long: `Show a toast notification through the platform notification service.

After submitting, toast stays alive for --wait and prints every event the
notification produces: activation (with the clicked action's arguments),
dismissal (with its reason) or failure. Running out of wait time is not an
error; the toast may still be acted on from the action center.`,
		Example: `  # Title and body
  toast show --title "Build finished" --line "All 212 tests passed"

  # Buttons, images and a custom sound
  toast show -t "Deploy?" -a "Ship it=deploy:prod" -a "Later=snooze" \
    --logo ./logo.png --crop circle --audio ms-winsoundevent:Notification.SMS

  # From a YAML template, waiting up to a minute
  toast show --file reminder.yaml --wait 1m`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if until != untilSettled && until != untilAny {
				return shared.InvalidArgs("--until must be %q or %q", untilSettled, untilAny)
			}
			content, err := cf.content(cmd)
			if err != nil {
				return err
			}

			rt, err := shared.LoadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !cmd.Flags().Changed("wait") {
				wait = rt.Config.Wait
			}
			return runShow(cmd, rt, content, showOptions{wait: wait, until: until, autoDismiss: autoDismiss})
		},
	}

	cf.register(cmd)
	cmd.Flags().DurationVarP(&wait, "wait", "w", 0, "How long to wait for events (default from config, 0 returns after submit)")
	cmd.Flags().StringVar(&until, "until", untilSettled, "Stop waiting at: settled (activated or failed) or any event")
	cmd.Flags().DurationVar(&autoDismiss, "sim-auto-dismiss", 0, "Simulator only: time out shown toasts after this duration")
	_ = cmd.Flags().MarkHidden("sim-auto-dismiss")
	return cmd
}

type showOptions struct {
	wait        time.Duration
	until       string
	autoDismiss time.Duration
}

func runShow(cmd *cobra.Command, rt *shared.Runtime, content *toast.Content, opts showOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rt.Config
	id := toast.Identity(cfg.AppID)

	backend, err := platform.Open(ctx, cfg.Backend, platform.Options{
		Log:            logging.Component(rt.Log, "backend"),
		Linger:         cfg.Linger,
		SimIdentities:  []toast.Identity{id},
		SimAutoDismiss: opts.autoDismiss,
	})
	if err != nil {
		return err
	}
	// Close waits for the event being delivered, so history is complete.
	defer backend.Close()

	clientOpts := []toast.ClientOption{
		toast.WithLogger(logging.Component(rt.Log, "client")),
		toast.WithObserver(history.NewWriter(cfg.StateDir, cfg.MaxHistory, logging.Component(rt.Log, "history"))),
	}
	if cfg.SubmitRate > 0 {
		clientOpts = append(clientOpts, toast.WithRateLimit(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst))
	}
	client := toast.NewClient(backend, clientOpts...)

	notifier, err := client.Resolve(ctx, id)
	if err != nil {
		return err
	}
	req, err := toast.NewRequest(content)
	if err != nil {
		return err
	}

	display := progress.NewDisplay(progress.DetectTerminalCapabilities(), cmd.OutOrStdout())
	if err := reportEvents(req, display); err != nil {
		return err
	}
	// Attached after the reporters so a line is printed before Wait sees its event.
	rec := toast.NewRecorder()
	if err := rec.Attach(req); err != nil {
		return err
	}

	if err := client.Submit(ctx, notifier, req); err != nil {
		return err
	}
	display.Report(progress.OutcomeSuccess, "submitted", fmt.Sprintf("%s via %s", req.ID(), notifier.Backend()))

	if opts.wait <= 0 {
		return nil
	}

	predicate := toast.UntilSettled
	if opts.until == untilAny {
		predicate = toast.UntilAny
	}

	if err := display.Start(fmt.Sprintf("Waiting for toast events (%s)", opts.wait)); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, opts.wait)
	defer cancel()
	events, err := rec.Wait(waitCtx, predicate)
	display.Stop()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	if len(events) == 0 {
		display.Report(progress.OutcomeInfo, "no events", "wait elapsed")
	}
	for _, ev := range events {
		if ev.Slot() == toast.SlotFailed {
			return shared.NewExitError(shared.ExitValidationFailed)
		}
	}
	return nil
}

// reportEvents prints one line per delivered event.
func reportEvents(req *toast.Request, display *progress.Display) error {
	if _, err := req.OnActivated(func(_ context.Context, e toast.ActivatedEvent) error {
		display.Report(progress.OutcomeSuccess, "activated", describeActivation(e))
		return nil
	}); err != nil {
		return err
	}
	if _, err := req.OnDismissed(func(_ context.Context, e toast.DismissedEvent) error {
		display.Report(progress.OutcomeInfo, "dismissed", e.ReasonText())
		return nil
	}); err != nil {
		return err
	}
	_, err := req.OnFailed(func(_ context.Context, e toast.FailedEvent) error {
		display.Report(progress.OutcomeFailure, "failed", e.Message())
		return nil
	})
	return err
}

func describeActivation(e toast.ActivatedEvent) string {
	switch {
	case !e.HasArgs:
		return "(arguments unavailable)"
	case e.Arguments == "":
		return "(toast body)"
	default:
		return e.Arguments
	}
}
