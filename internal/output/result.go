package output

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result is the JSON document every command prints.
type Result struct {
	Command       string           `json:"command"`
	Engine        string           `json:"engine"`
	Status        string           `json:"status"`
	Identifier    string           `json:"identifier,omitempty"`
	Path          string           `json:"path,omitempty"`
	URL           string           `json:"url,omitempty"`
	Filename      string           `json:"filename,omitempty"`
	ContentType   string           `json:"content_type,omitempty"`
	Size          *int64           `json:"size,omitempty"`
	Exists        *bool            `json:"exists,omitempty"`
	LocalPath     string           `json:"local_path,omitempty"`
	ExecutionTime int64            `json:"execution_time"` // milliseconds
	Throughput    *decimal.Decimal `json:"throughput_kib_s,omitempty"`
	Error         string           `json:"error,omitempty"`

	// Webhook status (only in local output, not sent to webhook)
	WebhookSent  bool   `json:"webhook_sent,omitempty"`
	WebhookError string `json:"webhook_error,omitempty"`
}

// Finish records the elapsed time since start and the outcome. When the
// result carries a size, throughput is derived from it.
func (r *Result) Finish(start time.Time, err error) {
	elapsed := time.Since(start)
	r.ExecutionTime = elapsed.Milliseconds()
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSuccess
	if r.Size != nil {
		r.Throughput = Throughput(*r.Size, elapsed)
	}
}

// Throughput returns KiB per second rounded to two places, or nil when
// elapsed is not positive.
func Throughput(bytes int64, elapsed time.Duration) *decimal.Decimal {
	if elapsed <= 0 {
		return nil
	}
	kib := decimal.NewFromInt(bytes).Div(decimal.NewFromInt(1024))
	secs := decimal.NewFromInt(elapsed.Nanoseconds()).Div(decimal.NewFromInt(int64(time.Second)))
	tp := kib.Div(secs).Round(2)
	return &tp
}
