package email

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	resend "github.com/resend/resend-go/v3"
)

const categoryTag = "status_page"

// ResendProvider implements the Provider interface for Resend.
type ResendProvider struct {
	apiKey string
	from   string
	client *resend.Client
}

// NewResendProvider creates a new Resend provider.
func NewResendProvider(apiKey, from string) *ResendProvider {
	return &ResendProvider{
		apiKey: apiKey,
		from:   from,
		client: resend.NewClient(apiKey),
	}
}

// NewResendProviderWithBaseURL points the client at another API host.
func NewResendProviderWithBaseURL(apiKey, from, baseURL string) (*ResendProvider, error) {
	provider := NewResendProvider(apiKey, from)
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid resend base url: %w", err)
	}
	provider.client.BaseURL = parsed
	return provider, nil
}

// SendEmail sends an email via the Resend API.
func (r *ResendProvider) SendEmail(ctx context.Context, email *Email) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}
	if r.client == nil {
		return fmt.Errorf("resend client not configured")
	}

	if strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Tags:    resendTags(email.Tags),
	}
	if email.HTML != "" {
		params.Html = email.HTML
	}
	if email.Text != "" {
		params.Text = email.Text
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email body is empty")
	}

	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	return nil
}

// ValidateAPIKey checks if the API key is valid.
func (r *ResendProvider) ValidateAPIKey(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("resend client not configured")
	}
	if _, err := r.client.ApiKeys.ListWithContext(ctx); err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}
	return nil
}

// resendTags always carries the category and orders the rest by name so
// requests are stable.
func resendTags(extra map[string]string) []resend.Tag {
	tags := []resend.Tag{{Name: "category", Value: categoryTag}}
	names := make([]string, 0, len(extra))
	for name, value := range extra {
		if name == "category" || strings.TrimSpace(value) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tags = append(tags, resend.Tag{Name: name, Value: extra[name]})
	}
	return tags
}
