// Package mercadopago implements payment-link creation on the Mercado Pago
// preference API.
package mercadopago

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

const defaultBaseURL = "https://api.mercadopago.com"

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
	return "mercadopago"
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.Adapter, error) {
	token := strings.TrimSpace(cfg.APIKey)
	if token == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return &Adapter{
		orgID:   cfg.OrgID,
		baseURL: f.baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type Adapter struct {
	orgID   snowflake.ID
	baseURL string
	token   string
	client  *http.Client
}

type preferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	Items             []preferenceItem `json:"items"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (a *Adapter) CreateLink(ctx context.Context, req paymentdomain.LinkRequest) (*paymentdomain.Link, error) {
	payload, err := json.Marshal(preferenceRequest{
		ExternalReference: req.Reference,
		Items: []preferenceItem{{
			Title:     req.Description,
			Quantity:  1,
			UnitPrice: float64(req.Amount) / 100,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: mercadopago responded %s", paymentdomain.ErrLinkFailed, resp.Status)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decode preference: %w", err)
	}
	if pref.InitPoint == "" {
		return nil, paymentdomain.ErrLinkFailed
	}
	return &paymentdomain.Link{URL: pref.InitPoint, Ref: pref.ID}, nil
}
