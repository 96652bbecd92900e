package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/gitshopapp/trackpage/internal/email"
	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/observability"
)

// ShareService emails a status page's public link.
type ShareService struct {
	pages    *TrackingPageService
	provider email.Provider
	baseURL  string
	logger   *slog.Logger
}

// NewShareService returns a service whose SharePage fails with
// ErrSharingDisabled when provider is nil.
func NewShareService(pages *TrackingPageService, provider email.Provider, baseURL string, logger *slog.Logger) (*ShareService, error) {
	if pages == nil {
		return nil, fmt.Errorf("tracking page service is required")
	}
	if provider != nil && strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url is required for sharing")
	}
	return &ShareService{
		pages:    pages,
		provider: provider,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		logger:   logger,
	}, nil
}

func (s *ShareService) Enabled() bool {
	return s != nil && s.provider != nil
}

// PublicURL is the customer-facing link for a page.
func (s *ShareService) PublicURL(id string) string {
	return s.baseURL + "/track/" + url.PathEscape(id)
}

func (s *ShareService) SharePage(ctx context.Context, id, recipient string) error {
	if !s.Enabled() {
		return ErrSharingDisabled
	}

	address, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return ValidationError{Message: "A valid recipient email address is required"}
	}

	page, err := s.pages.Get(ctx, id)
	if err != nil {
		return err
	}

	link := email.PageLink{
		PageID:         page.ID,
		CarrierCode:    page.CarrierCode,
		To:             address.Address,
		CustomerName:   page.CustomerName,
		OrderNumber:    page.OrderNumber,
		TrackingNumber: page.TrackingNumber,
		Carrier:        page.Carrier,
		URL:            s.PublicURL(page.ID),
	}
	if latest := page.LatestEvent(); latest != nil {
		link.LatestStatus = latest.Status
		link.LatestDate = latest.Date
	}

	msg, err := email.RenderPageLink(link)
	if err != nil {
		return err
	}

	if err := s.provider.SendEmail(ctx, msg); err != nil {
		observability.CountPage(ctx, observability.MetricPageShareFailed, page.CarrierCode)
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	observability.CountPage(ctx, observability.MetricPageShared, page.CarrierCode)
	logging.FromContext(ctx, s.logger).Info("status page shared", logging.PageIDKey, page.ID)
	return nil
}
