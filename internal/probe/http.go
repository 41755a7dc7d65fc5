package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"uptime-monitor/internal/model"
)

// HTTPProber checks HTTP-kind targets with a shared client. The per-target
// timeout is applied through the request context, not the client, so one
// prober instance serves targets with different timeouts.
type HTTPProber struct {
	client *resty.Client  // HTTP client
	logger zerolog.Logger // Logger
}

// NewHTTPProber creates a prober for http/https/api targets.
// Redirects are followed, matching browser reachability semantics.
func NewHTTPProber(logger zerolog.Logger) *HTTPProber {
	client := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", "upmon-probe/1.0")

	return &HTTPProber{
		client: client,
		logger: logger.With().Str("component", "http-probe").Logger(),
	}
}

// Run performs a GET against the target URL and classifies the outcome.
// 2xx and 3xx responses count as success; any other status is a failure with
// the status code retained; a missed deadline is a timeout; everything else
// (DNS, refused connection, TLS) is a connection failure.
func (p *HTTPProber) Run(ctx context.Context, target *model.MonitorTarget) *model.MetricSample {
	started := time.Now().UTC()
	sample := &model.MetricSample{
		MonitorID:   target.ID,
		MonitorName: target.Name,
		CheckedAt:   started,
	}

	probeCtx, cancel := context.WithTimeout(ctx, target.TimeoutDuration())
	defer cancel()

	resp, err := p.client.R().
		SetContext(probeCtx).
		Get(target.URL)

	if err != nil {
		if isTimeout(err) {
			sample.Status = model.StatusTimeout
			sample.Error = "Request timeout"
		} else {
			sample.Status = model.StatusFailure
			sample.Error = fmt.Sprintf("Connection error: %v", err)
		}
		p.logger.Debug().
			Err(err).
			Str("monitor", target.Name).
			Str("url", target.URL).
			Msg("probe did not reach the target")
		return sample
	}

	sample.StatusCode = resp.StatusCode()
	sample.Latency = resp.Time()

	if resp.StatusCode() >= 200 && resp.StatusCode() < 400 {
		sample.Status = model.StatusSuccess
	} else {
		sample.Status = model.StatusFailure
		sample.Error = fmt.Sprintf("HTTP %d", resp.StatusCode())
	}

	p.logger.Debug().
		Str("monitor", target.Name).
		Int("status_code", sample.StatusCode).
		Dur("latency", sample.Latency).
		Str("status", string(sample.Status)).
		Msg("probe completed")

	return sample
}

// isTimeout reports whether the request failed because the deadline passed.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
