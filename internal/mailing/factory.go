package mailing

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/newsletter/internal/config"
)

// Supported email_client.provider values.
const (
	ProviderHTTP = "http"
	ProviderSES  = "ses"
)

// NewSender builds the transport selected by cfg.Provider. The sender
// address is validated here so a bad from-address fails at startup.
func NewSender(ctx context.Context, cfg config.EmailClientConfig) (Sender, error) {
	from, err := cfg.Sender()
	if err != nil {
		return nil, fmt.Errorf("email_client.sender_email: %w", err)
	}

	switch cfg.Provider {
	case ProviderHTTP, "":
		if cfg.BaseURL == "" {
			return nil, errors.New("email_client.base_url is required for the http provider")
		}
		return NewHTTPClient(cfg.BaseURL, from, cfg.AuthorizationToken, cfg.Timeout()), nil
	case ProviderSES:
		return NewSESSender(ctx, SESOptions{
			Region:    cfg.SESRegion,
			AccessKey: cfg.SESAccessKey,
			SecretKey: cfg.SESSecretKey,
		}, from, cfg.Timeout())
	default:
		return nil, fmt.Errorf("unknown email_client.provider %q", cfg.Provider)
	}
}
