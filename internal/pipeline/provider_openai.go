package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// openAIClient implements completer by talking to an OpenAI-compatible
// chat-completion endpoint over HTTPS.
type openAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	reqTimeout  time.Duration
	httpClient  *http.Client
	log         *zerolog.Logger
}

// newOpenAIClient constructs the provider-backed completer. The transport is
// shared and connection-pooled; idle connections are recycled by the pool.
func newOpenAIClient(baseURL, apiKey, model string, temperature float64, reqTimeout, connectTimeout time.Duration, log *zerolog.Logger) *openAIClient {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Intentionally Timeout=0 on the client: every request carries a
	// context-based deadline so cancellation tears down the in-flight call
	// instead of merely abandoning it.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &openAIClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		reqTimeout:  reqTimeout,
		httpClient:  cli,
		log:         log,
	}
}

// chatCompletionRequest is the payload for POST /v1/chat/completions.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// providerErrorBody is the error envelope used by OpenAI-compatible servers.
type providerErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues one chat-completion attempt under the configured deadline
// and returns the assistant message content.
func (c *openAIClient) Complete(ctx context.Context, msgs []ChatMessage) (string, error) {
	parent := ctx
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}

	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", providerError{msg: "encode request: " + err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", providerError{msg: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Translate context outcomes before surfacing transport errors.
		if parent.Err() != nil {
			return "", parent.Err()
		}
		if ctx.Err() == context.DeadlineExceeded {
			providerRequestsTotal.WithLabelValues("timeout").Inc()
			return "", timeoutError{}
		}
		providerRequestsTotal.WithLabelValues("transport_error").Inc()
		return "", providerError{msg: err.Error()}
	}
	defer resp.Body.Close()

	if c.log != nil {
		c.log.Debug().Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("provider attempt")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.classifyFailure(resp)
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if parent.Err() != nil {
			return "", parent.Err()
		}
		if ctx.Err() == context.DeadlineExceeded {
			providerRequestsTotal.WithLabelValues("timeout").Inc()
			return "", timeoutError{}
		}
		providerRequestsTotal.WithLabelValues("bad_payload").Inc()
		return "", malformedResponseError{reason: "undecodable provider payload"}
	}
	if len(out.Choices) == 0 {
		providerRequestsTotal.WithLabelValues("bad_payload").Inc()
		return "", malformedResponseError{reason: "no completion choices"}
	}
	providerRequestsTotal.WithLabelValues("ok").Inc()
	return out.Choices[0].Message.Content, nil
}

// classifyFailure maps a non-2xx provider response onto the error taxonomy.
// HTTP 429, or an error body whose type/code/message indicates rate or quota
// exhaustion, becomes a rate-limit error; everything else is a provider error
// carrying the provider's message when one is present.
func (c *openAIClient) classifyFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var eb providerErrorBody
	_ = json.Unmarshal(raw, &eb)

	if resp.StatusCode == http.StatusTooManyRequests || looksRateLimited(eb) {
		providerRequestsTotal.WithLabelValues("rate_limited").Inc()
		return rateLimitError{retryAfter: defaultRetryAfterHint}
	}
	providerRequestsTotal.WithLabelValues("provider_error").Inc()
	msg := eb.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	return providerError{status: resp.StatusCode, msg: msg}
}

func looksRateLimited(eb providerErrorBody) bool {
	for _, s := range []string{eb.Error.Type, eb.Error.Code, eb.Error.Message} {
		s = strings.ToLower(s)
		if s == "" {
			continue
		}
		if strings.Contains(s, "rate limit") || strings.Contains(s, "rate_limit") ||
			strings.Contains(s, "quota") || strings.Contains(s, "too many requests") {
			return true
		}
	}
	return false
}
