// Package email sends status page links to customers.
package email

import (
	"context"
	"fmt"
	"strings"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Tags label the message at the provider, e.g. the page it links to.
	Tags map[string]string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
}

// NewProvider returns nil without error when no API key is configured.
func NewProvider(config Config) (Provider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, nil
	}
	switch config.Provider {
	case "resend", "":
		if strings.TrimSpace(config.From) == "" {
			return nil, fmt.Errorf("from address is required")
		}
		return NewResendProvider(config.APIKey, config.From), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", config.Provider)
	}
}
