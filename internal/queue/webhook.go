package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iliyamo/movie-night/internal/logger"
)

// ErrPermanent marks a delivery failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent delivery failure")

// Webhook posts events to an incoming chat webhook as {"text": "..."}.
type Webhook struct {
	url         string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewWebhook(url string, timeout time.Duration, maxAttempts int, backoff time.Duration) *Webhook {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Webhook{
		url:         url,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Deliver posts ev, retrying network errors, 429 and 5xx responses with
// linear backoff. Other 4xx responses fail immediately with ErrPermanent.
func (w *Webhook) Deliver(ctx context.Context, ev VoteEvent) error {
	body, err := json.Marshal(map[string]string{"text": ev.Text()})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * w.backoff):
			}
		}
		lastErr = w.post(ctx, body)
		if lastErr == nil || errors.Is(lastErr, ErrPermanent) {
			return lastErr
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrPermanent, resp.StatusCode)
	}
}

// LogDeliverer writes events to the log. It stands in for the webhook when
// no URL is configured.
type LogDeliverer struct {
	Log logger.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, ev VoteEvent) error {
	d.Log.Info("vote-consumer: "+ev.Text(), "movie_id", ev.MovieID, "action", ev.Action, "vote_count", ev.VoteCount)
	return nil
}
