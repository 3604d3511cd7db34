package pipeline

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultBaseURL        = "https://api.openai.com"
	defaultModel          = "gpt-4o-mini"
	defaultTemperature    = 0.7
	defaultMaxConcurrent  = 1
	defaultRequestTimeout = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultRetryMax       = 3
	defaultRetryDelay     = 2 * time.Second
	defaultRetryAfterHint = 3600 // seconds, surfaced on rate-limit errors
)

// Config encapsulates all tunables for Pipeline construction.
type Config struct {
	// BaseURL of the OpenAI-compatible provider (no trailing slash needed).
	BaseURL string
	// APIKey is the bearer credential. Empty means the pipeline is not ready
	// and every Generate call fails with a configuration error.
	APIKey string
	// Model identifier sent with every completion request.
	Model string
	// Temperature for sampling; the wire value is fixed per request.
	Temperature float64
	// MaxConcurrent caps in-flight generations. Default 1: strictly
	// serialized, completion order equals admission order.
	MaxConcurrent int
	// RequestTimeout bounds each provider attempt.
	RequestTimeout time.Duration
	// ConnectTimeout bounds TCP dialing to the provider.
	ConnectTimeout time.Duration
	// RetryMax is the total attempt budget for rate-limited calls.
	RetryMax int
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
	// Logger is optional; nil disables pipeline logging.
	Logger *zerolog.Logger
}

// Pipeline runs the generation request pipeline: admission, completion,
// validation. One Pipeline serves the whole process.
type Pipeline struct {
	gate       *gate
	client     completer
	retry      retryPolicy
	configured bool
	log        *zerolog.Logger
}

// NewWithConfig constructs a Pipeline from Config, applying package defaults
// to unset fields.
func NewWithConfig(cfg Config) *Pipeline {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = defaultRetryMax
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Pipeline{
		gate:   newGate(cfg.MaxConcurrent),
		client: newOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.RequestTimeout, cfg.ConnectTimeout, cfg.Logger),
		retry: retryPolicy{
			maxAttempts: cfg.RetryMax,
			delay:       cfg.RetryDelay,
			retryable:   IsRateLimit,
		},
		configured: cfg.APIKey != "",
		log:        cfg.Logger,
	}
}

// Ready reports whether the pipeline can serve requests (credential present).
func (p *Pipeline) Ready() bool { return p.configured }

// Inflight returns the number of admitted requests currently in flight.
func (p *Pipeline) Inflight() int { return p.gate.inflight() }
