package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hireline/internal/config"
)

const userAgent = "Hireline/0.1.0"

// ErrSuppressed reports that the intent's kind is disabled by configuration.
// Nothing was sent and nothing will be; callers should count it separately
// from delivery failures.
var ErrSuppressed = errors.New("notification kind disabled by configuration")

// Kind labels a notification intent.
type Kind string

const (
	KindSubmitted    Kind = "submitted"
	KindStageChanged Kind = "stage_changed"
)

// Intent is a fire-and-forget request for a downstream message to be
// delivered, decoupled from the transactional core. Payload carries
// kind-specific detail such as old and new stage.
type Intent struct {
	Kind          Kind              `json:"kind"`
	ApplicationID string            `json:"application_id"`
	Recipients    []string          `json:"recipients"`
	Payload       map[string]string `json:"payload,omitempty"`
}

// Sink accepts intents for eventual delivery. Implementations must treat
// Publish as best-effort: callers never retry and never roll back on error.
type Sink interface {
	Publish(ctx context.Context, intent Intent) error
}

// NewSink builds a notification sink backed by the configured webhook.
// When no webhook URL is configured, a noop implementation is returned.
func NewSink(cfg *config.Config) Sink {
	endpoint := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if endpoint == "" {
		return noopSink{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookSink{
		endpoint:     endpoint,
		client:       &http.Client{Timeout: timeout},
		submitted:    cfg.Notifications.Submitted,
		stageChanged: cfg.Notifications.StageChanged,
	}
}

type webhookSink struct {
	endpoint     string
	client       *http.Client
	submitted    bool
	stageChanged bool
}

func (s *webhookSink) Publish(ctx context.Context, intent Intent) error {
	if s == nil || s.client == nil {
		return nil
	}
	if s.suppressed(intent.Kind) {
		return ErrSuppressed
	}

	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("encode intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification intent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *webhookSink) suppressed(kind Kind) bool {
	switch kind {
	case KindSubmitted:
		return !s.submitted
	case KindStageChanged:
		return !s.stageChanged
	default:
		return true
	}
}

type noopSink struct{}

func (noopSink) Publish(context.Context, Intent) error { return nil }
