// Package pipeline coordinates a single card generation request from admission
// to validated artifact. It is structured into small files by concern:
//
//   - pipeline.go: core Pipeline type, Config and package defaults.
//   - admission.go: the in-flight concurrency gate (load shedding, no queue).
//   - errors.go: error taxonomy and helpers (IsBusy, IsRateLimit, ...).
//   - prompt.go: the fixed system/user instruction pair sent to the provider.
//   - provider.go: the completer interface the pipeline calls through.
//   - provider_openai.go: OpenAI-compatible chat-completion HTTP client.
//   - retry.go: bounded retry helper with a retryable-error predicate.
//   - validate.go: card artifact parsing and type-tag validation.
//   - generate.go: Generate entry point tying the stages together.
//   - metrics.go: Prometheus counters for provider calls and outcomes.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Generate, Ready, Inflight).
package pipeline
