package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/output"
	"github.com/zinc-sig/ferry/internal/webhook"
)

// Reporter prints results and optionally posts them to a webhook.
type Reporter struct {
	Out     io.Writer
	Log     logging.Logger
	Webhook *webhook.Config
	Retry   *webhook.RetryConfig
}

// OutputJSON marshals and prints the result as JSON
func OutputJSON(w io.Writer, result *output.Result) error {
	jsonOutput, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(jsonOutput))
	return err
}

// Emit sends the webhook when configured, then prints the result. Webhook
// failures are recorded in the result and never returned.
func (r *Reporter) Emit(ctx context.Context, result *output.Result) error {
	if r.Webhook != nil && r.Webhook.URL != "" {
		log := r.Log
		if log == nil {
			log = logging.Nop()
		}
		client := webhook.NewClient(r.Webhook, r.Retry, log)
		log.Debug(ctx, "sending webhook", "url", r.Webhook.URL)

		// Create a copy of result without webhook fields for sending
		payload := *result
		payload.WebhookSent = false
		payload.WebhookError = ""

		if err := client.Send(ctx, &payload); err != nil {
			log.Warn(ctx, "webhook failed", "error", err)
			result.WebhookSent = false
			result.WebhookError = err.Error()
		} else {
			result.WebhookSent = true
		}
	}

	// Always output to stdout
	return OutputJSON(r.Out, result)
}
