package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Generate runs the full pipeline for one description and returns the
// validated card artifact.
//
// Stage order: input check, configuration check, admission, completion under
// the retry/timeout policy, validation. The admission slot is released on
// every exit path. Validation and configuration failures are deterministic
// and never retried; only rate-limit classified provider failures are.
func (p *Pipeline) Generate(ctx context.Context, description string) (json.RawMessage, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrValidation("description is required")
	}
	if !p.configured {
		generationsTotal.WithLabelValues("config_error").Inc()
		return nil, ErrConfiguration("provider API key is not set")
	}

	release, ok := p.gate.tryAcquire()
	if !ok {
		generationsTotal.WithLabelValues("shed").Inc()
		return nil, busyError{}
	}
	defer release()

	msgs := buildMessages(description)
	start := time.Now()
	var content string
	err := p.retry.do(ctx, func(ctx context.Context) error {
		var err error
		content, err = p.client.Complete(ctx, msgs)
		return err
	})
	if err != nil {
		p.observeFailure(err, time.Since(start))
		return nil, err
	}

	card, err := validateCard(content)
	if err != nil {
		// Raw model output stays in the logs; it never reaches the caller.
		if p.log != nil {
			raw, _ := MalformedRaw(err)
			p.log.Debug().Str("raw", truncate(raw, 2048)).Msg("model output failed validation")
		}
		generationsTotal.WithLabelValues("malformed").Inc()
		return nil, err
	}
	generationsTotal.WithLabelValues("ok").Inc()
	generationDuration.Observe(time.Since(start).Seconds())
	return card, nil
}

func (p *Pipeline) observeFailure(err error, dur time.Duration) {
	outcome := "provider_error"
	switch {
	case IsTimeout(err):
		outcome = "timeout"
	case IsRateLimit(err):
		outcome = "rate_limited"
	case IsMalformedResponse(err):
		outcome = "malformed"
	case err == context.Canceled || err == context.DeadlineExceeded:
		outcome = "canceled"
	}
	generationsTotal.WithLabelValues(outcome).Inc()
	if p.log != nil {
		p.log.Info().Str("outcome", outcome).Dur("dur", dur).Err(err).Msg("generation failed")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
