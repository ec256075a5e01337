// Package llm wraps an Ollama-compatible model server's chat-completion and
// embedding endpoints for classification (component C) and semantic search.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	perr "bookmarkhub/internal/platform/errors"
	"bookmarkhub/internal/platform/logger"
)

const (
	classifyTimeout        = 120 * time.Second
	answerTimeout          = 120 * time.Second
	embedTimeout           = 60 * time.Second
	defaultConnect         = 5 * time.Second
	defaultMaxRetry        = 3
	defaultRetryBase       = time.Second
	defaultMaxConnsPerHost = 16
	// EmbeddingDim is the stored vector width; a server returning a different
	// dimension is a fatal configuration error, not a retryable one.
	EmbeddingDim = 768
)

// Options configures the Client.
type Options struct {
	BaseURL         string // e.g. http://localhost:11434
	ChatModel       string
	EmbedModel      string
	MaxRetries      int
	RetryBase       time.Duration
	MaxConnsPerHost int
}

// Classification is the structured output of a classify call.
type Classification struct {
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}

// StatusError is a typed non-2xx response, letting callers distinguish
// retryable transport/5xx conditions from malformed-request 4xx ones.
type StatusError struct {
	Status int
	Body   string
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// Client talks to the model server for classification and embeddings.
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults.
func NewClient(o Options) *Client {
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxConnsPerHost <= 0 {
		o.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: defaultConnect}).DialContext,
		MaxConnsPerHost: o.MaxConnsPerHost,
	}
	return &Client{
		http:  &http.Client{Transport: transport},
		opts:  o,
		log:   *logger.Named("llm"),
		sleep: time.Sleep,
	}
}

const classifySystemPrompt = `Classify the following bookmark content. Respond with strict
JSON matching {"tags": string[], "summary": string}. tags must be lowercase, hyphenated,
single tokens, at most 8. summary must be 1-3 plain-text sentences. Do not include any
other text in your response.`

// Classify asks the model for tags and a summary. A JSON schema violation is
// treated as retryable: the model may be transiently malformed.
func (c *Client) Classify(ctx context.Context, text string) (Classification, error) {
	reqBody := map[string]any{
		"model": c.opts.ChatModel,
		"messages": []map[string]string{
			{"role": "system", "content": classifySystemPrompt},
			{"role": "user", "content": text},
		},
		"format": "json",
		"stream": false,
	}

	raw, err := c.post(ctx, "/api/chat", reqBody, classifyTimeout)
	if err != nil {
		return Classification{}, err
	}

	var envelope struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Classification{}, perr.Newf(perr.ErrorCodeUnavailable, "llm classify: malformed chat envelope: %v", err)
	}

	var out Classification
	if err := json.Unmarshal([]byte(envelope.Message.Content), &out); err != nil {
		return Classification{}, perr.Newf(perr.ErrorCodeUnavailable, "llm classify: model returned non-conforming JSON: %v", err)
	}
	return out, nil
}

// Answer runs a single non-JSON chat completion with the given system and
// user prompts, returning the model's free-text reply. Used by the rag
// composer, which needs grounded prose rather than a structured schema.
func (c *Client) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]any{
		"model": c.opts.ChatModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"stream": false,
	}

	raw, err := c.post(ctx, "/api/chat", reqBody, answerTimeout)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", perr.Newf(perr.ErrorCodeUnavailable, "llm answer: malformed chat envelope: %v", err)
	}
	return envelope.Message.Content, nil
}

// Embed batch-embeds texts, asserting every vector matches EmbeddingDim.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]any{
		"model": c.opts.EmbedModel,
		"input": texts,
	}
	raw, err := c.post(ctx, "/api/embed", reqBody, embedTimeout)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "llm embed: malformed response: %v", err)
	}
	for i, v := range envelope.Embeddings {
		if len(v) != EmbeddingDim {
			return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "llm embed: vector %d has dimension %d, want %d", i, len(v), EmbeddingDim)
		}
	}
	return envelope.Embeddings, nil
}

func (c *Client) post(ctx context.Context, path string, body any, timeout time.Duration) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "marshal llm request")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "new llm request")
		}
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)
		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm request failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Str("path", path).Msg("llm transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().Int("status", resp.StatusCode).Dur("latency", lat).Str("path", path).Int("attempt", attempts).Msg("llm http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			if !c.shouldRetry(attempts) {
				b := readSmall(resp.Body)
				_ = resp.Body.Close()
				return nil, &StatusError{Status: resp.StatusCode, Body: b, Err: perr.Newf(perr.ErrorCodeUnavailable, "llm transient error")}
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("llm transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue

		default:
			b := readSmall(resp.Body)
			_ = resp.Body.Close()
			return nil, &StatusError{Status: resp.StatusCode, Body: b, Err: perr.Newf(perr.ErrorCodeInvalidArgument, "llm rejected request with status %d", resp.StatusCode)}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	const max = int64(20 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }

func readSmall(rc io.ReadCloser) string {
	b, _ := io.ReadAll(io.LimitReader(rc, 2048))
	s := strings.TrimSpace(string(b))
	return strings.ReplaceAll(s, "\n", " ")
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	return rc.Close()
}
