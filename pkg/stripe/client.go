package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("payment gateway api key is required")
	errSecretRequired = errors.New("payment webhook secret is required")
)

// Client wraps Stripe's API client plus webhook verification metadata. Stripe
// is the platform's Payment Processor for charges, refunds, and payouts.
type Client struct {
	api           *stripe.Client
	signingSecret string
}

// NewClient initializes Stripe once with the configured secrets.
func NewClient(ctx context.Context, cfg config.PaymentGatewayConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	signingSecret := strings.TrimSpace(cfg.WebhookSecret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, "payment gateway client initialized")
	}

	return &Client{
		api:           api,
		signingSecret: signingSecret,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}
