// Package asaas implements payment-link creation on the Asaas payment-link
// API.
package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	paymentdomain "github.com/cobrato/cobrato/internal/payment/domain"
)

const defaultBaseURL = "https://api.asaas.com/v3"

type Factory struct {
	baseURL string
}

func NewFactory(baseURL string) *Factory {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Factory{baseURL: baseURL}
}

func (f *Factory) Provider() string {
	return "asaas"
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.Adapter, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return &Adapter{
		orgID:   cfg.OrgID,
		baseURL: f.baseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type Adapter struct {
	orgID   snowflake.ID
	baseURL string
	apiKey  string
	client  *http.Client
}

type paymentLinkRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Value             float64 `json:"value"`
	BillingType       string  `json:"billingType"`
	ChargeType        string  `json:"chargeType"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type paymentLinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (a *Adapter) CreateLink(ctx context.Context, req paymentdomain.LinkRequest) (*paymentdomain.Link, error) {
	payload, err := json.Marshal(paymentLinkRequest{
		Name:              req.Description,
		Description:       req.Description,
		Value:             float64(req.Amount) / 100,
		BillingType:       "UNDEFINED",
		ChargeType:        "DETACHED",
		ExternalReference: req.Reference,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment link: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/paymentLinks", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("access_token", a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: asaas responded %s", paymentdomain.ErrLinkFailed, resp.Status)
	}

	var link paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("decode payment link: %w", err)
	}
	if link.URL == "" {
		return nil, paymentdomain.ErrLinkFailed
	}
	return &paymentdomain.Link{URL: link.URL, Ref: link.ID}, nil
}
