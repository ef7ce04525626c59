package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	requestTimeout    = 20 * time.Second
	defaultRetryAfter = 2 * time.Second
)

// StatusError reports a webhook response outside 2xx.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord webhook status %d: %s", e.Code, e.Body)
}

type webhookPayload struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *allowedMentions `json:"allowed_mentions,omitempty"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

// Client posts to Discord webhooks.
type Client struct {
	http  *resty.Client
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client.
func NewClient(log *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("Content-Type", "application/json"),
		log:   log,
		sleep: sleepContext,
	}
}

// Send posts embeds in batches of MaxBatch, in order. A rate-limited batch
// is retried once after the advertised delay. The first failing batch
// aborts the send; earlier batches are not resent.
func (c *Client) Send(ctx context.Context, webhook string, embeds []Embed) error {
	for start := 0; start < len(embeds); start += MaxBatch {
		end := min(start+MaxBatch, len(embeds))
		if err := c.post(ctx, webhook, webhookPayload{Embeds: embeds[start:end]}); err != nil {
			return fmt.Errorf("send batch %d-%d: %w", start+1, end, err)
		}
		c.log.Debug("batch delivered", "from", start+1, "to", end)
	}
	return nil
}

// SendAlert posts a plain text message with mentions disabled.
func (c *Client) SendAlert(ctx context.Context, webhook, content string) error {
	payload := webhookPayload{
		Content:         Truncate(content, 2000),
		AllowedMentions: &allowedMentions{Parse: []string{}},
	}
	if err := c.post(ctx, webhook, payload); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, webhook string, payload webhookPayload) error {
	resp, err := c.do(ctx, webhook, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		wait := retryAfter(resp)
		c.log.Warn("rate limited by discord", "retry_after", wait)
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
		if resp, err = c.do(ctx, webhook, payload); err != nil {
			return err
		}
	}
	if !resp.IsSuccess() {
		return &StatusError{Code: resp.StatusCode(), Body: Truncate(resp.String(), 200)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, webhook string, payload webhookPayload) (*resty.Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(webhook)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	return resp, nil
}

// retryAfter reads the rate-limit delay from the JSON body, then the
// Retry-After header, both in seconds.
func retryAfter(resp *resty.Response) time.Duration {
	var body struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter * float64(time.Second))
	}
	if v, err := strconv.ParseFloat(resp.Header().Get("Retry-After"), 64); err == nil && v > 0 {
		return time.Duration(v * float64(time.Second))
	}
	return defaultRetryAfter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
