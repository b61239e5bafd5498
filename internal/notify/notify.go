// Package notify delivers push notifications about leader actions.
//
// A [Gateway] delivers one [Message]. [OneSignalGateway] calls the OneSignal REST API,
// [QueueGateway] hands messages to a durable AMQP queue drained by a [Consumer], and
// [LogGateway] only logs, which is what runs when no provider is configured.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roster/internal/shared"
)

var ErrMissingContent = errors.New("missing title or body")

// Message is a push notification. An empty ExternalIDs list targets every subscriber.
type Message struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	URL         string   `json:"url,omitempty"`
	ExternalIDs []string `json:"externalIds,omitempty"`
}

// Validate requires a title and a body.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Body) == "" {
		return ErrMissingContent
	}
	return nil
}

// Receipt describes an accepted delivery. Raw holds the provider's response body, if any.
type Receipt struct {
	ID         string          `json:"id,omitempty"`
	Recipients int             `json:"recipients,omitempty"`
	Queued     bool            `json:"queued,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// Gateway delivers a message to a push provider.
type Gateway interface {
	Deliver(ctx context.Context, m Message) (Receipt, error)
}

// APIError is a non-2xx response from a provider.
type APIError struct {
	StatusCode int
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrGatewayRequest, e.StatusCode, string(e.Details))
}

func (e *APIError) Unwrap() error { return shared.ErrGatewayRequest }

// LogGateway logs messages instead of sending them.
type LogGateway struct {
	logger *log.Logger
}

func NewLogGateway(logger *log.Logger) *LogGateway {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Deliver(_ context.Context, m Message) (Receipt, error) {
	if err := m.Validate(); err != nil {
		return Receipt{}, err
	}
	g.logger.Info("notification (simulated)", "title", m.Title, "body", m.Body, "recipients", len(m.ExternalIDs))
	return Receipt{}, nil
}

// New builds the gateway named by cfg.Provider: "log" (default), "onesignal" or "queue".
func New(ctx context.Context, cfg shared.NotificationsConfig, client *http.Client, logger *log.Logger) (Gateway, error) {
	switch cfg.Provider {
	case "", "log":
		return NewLogGateway(logger), nil
	case "onesignal":
		return NewOneSignalGateway(cfg.OneSignal, client)
	case "queue":
		return NewQueueGateway(ctx, cfg.Queue)
	default:
		return nil, fmt.Errorf("%w: unknown notification provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}
