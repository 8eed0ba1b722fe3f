package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notifier posts operator alerts to an ntfy topic. A Notifier with an empty
// endpoint is disabled and every call is a no-op.
type Notifier struct {
	Endpoint string
	Client   *http.Client
}

func New(endpoint string) *Notifier {
	return &Notifier{
		Endpoint: strings.TrimSpace(endpoint),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.Endpoint != ""
}

// BackupFailed reports a failed scheduled backup.
func (n *Notifier) BackupFailed(ctx context.Context, err error) error {
	if !n.Enabled() {
		return nil
	}
	return Send(ctx, n.Client, n.Endpoint, fmt.Sprintf("watchlist backup failed: %v", err))
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", "watchlistd")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
