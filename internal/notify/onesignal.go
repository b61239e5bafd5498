package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/roster/internal/shared"
)

const (
	DefaultOneSignalURL = "https://onesignal.com/api/v1"
	defaultRateLimit    = 5.0
)

// OneSignalGateway sends notifications through the OneSignal REST API.
type OneSignalGateway struct {
	appID      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOneSignalGateway creates a gateway. It fails with [shared.ErrMissingConfig]
// when the app id or REST key is empty.
func NewOneSignalGateway(cfg shared.OneSignalConfig, client *http.Client) (*OneSignalGateway, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OneSignal configuration", shared.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOneSignalURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &OneSignalGateway{
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}, nil
}

type content struct {
	En string `json:"en"`
}

type oneSignalPayload struct {
	AppID                  string   `json:"app_id"`
	Headings               content  `json:"headings"`
	Contents               content  `json:"contents"`
	URL                    string   `json:"url"`
	IncludeExternalUserIDs []string `json:"include_external_user_ids,omitempty"`
	IncludedSegments       []string `json:"included_segments,omitempty"`
}

func (g *OneSignalGateway) payload(m Message) oneSignalPayload {
	p := oneSignalPayload{
		AppID:    g.appID,
		Headings: content{En: m.Title},
		Contents: content{En: m.Body},
		URL:      m.URL,
	}
	if p.URL == "" {
		p.URL = "/"
	}
	if len(m.ExternalIDs) > 0 {
		p.IncludeExternalUserIDs = m.ExternalIDs
	} else {
		p.IncludedSegments = []string{"All"}
	}
	return p
}

// Deliver posts the message. Calls are rate limited per gateway.
func (g *OneSignalGateway) Deliver(ctx context.Context, m Message) (Receipt, error) {
	if err := m.Validate(); err != nil {
		return Receipt{}, err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return Receipt{}, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(g.payload(m))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Basic "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", shared.ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, &APIError{StatusCode: resp.StatusCode, Details: rawJSON(data)}
	}

	receipt := Receipt{Raw: rawJSON(data)}
	_ = json.Unmarshal(data, &receipt)
	return receipt, nil
}

// rawJSON returns data if it is valid JSON, otherwise data quoted as a JSON string.
func rawJSON(data []byte) json.RawMessage {
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	quoted, _ := json.Marshal(string(data))
	return json.RawMessage(quoted)
}
