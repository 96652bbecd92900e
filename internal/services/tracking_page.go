package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/gitshopapp/trackpage/internal/carrier"
	"github.com/gitshopapp/trackpage/internal/db"
	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/internal/observability"
	"github.com/gitshopapp/trackpage/internal/shopify"
	"github.com/gitshopapp/trackpage/internal/timeline"
)

const defaultRefreshAfter = 6 * time.Hour

// OrderGateway reads orders and their replacement tracking metafield.
type OrderGateway interface {
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	GetReplacementTracking(ctx context.Context, orderID string) (*models.ReplacementTracking, error)
}

// DurablePageStore persists saved pages across restarts.
type DurablePageStore interface {
	Upsert(ctx context.Context, page *models.StatusPage) error
	Get(ctx context.Context, id string) (*models.StatusPage, error)
	List(ctx context.Context, limit int) ([]*models.StatusPage, error)
	Delete(ctx context.Context, id string) (bool, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type GenerateInput struct {
	OrderNumber    string
	TrackingNumber string
	// PickupDate is an optional ISO-8601 date or datetime overriding the
	// label date.
	PickupDate string
}

type TrackingPageDependencies struct {
	Gateway     OrderGateway
	Cache       *PageCache
	Store       DurablePageStore
	Synthesizer *timeline.Synthesizer
	// RefreshAfter is how old a page may get before Get regenerates it.
	RefreshAfter time.Duration
	Location     *time.Location
	Now          func() time.Time
	NewID        func() string
	Logger       *slog.Logger
}

type TrackingPageService struct {
	gateway      OrderGateway
	cache        *PageCache
	store        DurablePageStore
	synthesizer  *timeline.Synthesizer
	refreshAfter time.Duration
	location     *time.Location
	now          func() time.Time
	newID        func() string
	logger       *slog.Logger

	// refreshes collapses concurrent stale-page regenerations per page id.
	refreshes singleflight.Group
}

func NewTrackingPageService(deps TrackingPageDependencies) (*TrackingPageService, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("order gateway is required")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("page cache is required")
	}
	if deps.Synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}

	s := &TrackingPageService{
		gateway:      deps.Gateway,
		cache:        deps.Cache,
		store:        deps.Store,
		synthesizer:  deps.Synthesizer,
		refreshAfter: deps.RefreshAfter,
		location:     deps.Location,
		now:          deps.Now,
		newID:        deps.NewID,
		logger:       deps.Logger,
	}
	if s.refreshAfter <= 0 {
		s.refreshAfter = defaultRefreshAfter
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

func (s *TrackingPageService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// DurableStoreEnabled reports whether saved pages outlive the process.
func (s *TrackingPageService) DurableStoreEnabled() bool {
	return s.store != nil
}

// Generate builds a new unsaved status page for an order and one of its
// tracking numbers.
func (s *TrackingPageService) Generate(ctx context.Context, in GenerateInput) (*models.StatusPage, error) {
	orderNumber := normalizeOrderNumber(in.OrderNumber)
	trackingNumber := strings.TrimSpace(in.TrackingNumber)
	if orderNumber == "" || trackingNumber == "" {
		return nil, ValidationError{Message: "Order number and tracking number are required"}
	}

	pickupOverride, err := timeline.ParseOptionalTimestamp(in.PickupDate, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: use YYYY-MM-DD", ErrInvalidPickupDate)
	}

	order, replacement, err := s.fetchOrder(ctx, orderNumber)
	if err != nil {
		observability.CountPage(ctx, observability.MetricPageGenerateFailed, "", attribute.String("reason", failureReason(err)))
		return nil, err
	}

	match, err := MatchTrackingNumber(order, replacement, trackingNumber)
	if err != nil {
		observability.CountPage(ctx, observability.MetricPageGenerateFailed, "", attribute.String("reason", "tracking_mismatch"))
		return nil, err
	}

	now := s.now()
	page := &models.StatusPage{
		ID:                    s.newID(),
		TrackingNumber:        trackingNumber,
		CustomPickupDate:      pickupOverride,
		IsReplacementTracking: match == TrackingMatchReplacement,
		CreatedAt:             now,
	}
	if page.IsReplacementTracking {
		updatedAt := replacement.UpdatedAt
		page.ReplacementTrackingDate = &updatedAt
	}

	if err := s.render(page, order, now); err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, page); err != nil {
		return nil, err
	}

	observability.CountPage(ctx, observability.MetricPageGenerated, page.CarrierCode, attribute.String("match", match.String()))
	s.loggerFromContext(ctx).Info("status page generated",
		logging.PageIDKey, page.ID,
		logging.OrderNumberKey, page.OrderNumber,
		"match", match.String(),
		logging.CarrierKey, page.CarrierCode,
	)
	return page, nil
}

// Save marks a page as saved so it no longer expires. Durable store failures
// are logged and the volatile copy is still kept.
func (s *TrackingPageService) Save(ctx context.Context, id string) (*models.StatusPage, error) {
	page, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	page.Saved = true
	page.UpdatedAt = s.now()
	if err := s.persist(ctx, page); err != nil {
		return nil, err
	}

	s.loggerFromContext(ctx).Info("status page saved", logging.PageIDKey, page.ID)
	return page, nil
}

// Get returns a page, regenerating it first when it is older than the
// refresh threshold. A failed refresh serves the stored page.
func (s *TrackingPageService) Get(ctx context.Context, id string) (*models.StatusPage, error) {
	page, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.fresh(page) {
		return page, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.refreshes.Do(page.ID, func() (any, error) {
		current, err := s.lookup(flightCtx, page.ID)
		if err != nil {
			return nil, err
		}
		if s.fresh(current) {
			return current, nil
		}
		return s.refresh(flightCtx, current)
	})
	if err != nil {
		observability.CountPage(ctx, observability.MetricPageStaleServed, page.CarrierCode)
		s.loggerFromContext(ctx).Warn("serving stale status page", logging.PageIDKey, page.ID, "error", err)
		return page, nil
	}
	return v.(*models.StatusPage), nil
}

func (s *TrackingPageService) fresh(page *models.StatusPage) bool {
	return s.now().Sub(page.UpdatedAt) < s.refreshAfter
}

// Refresh regenerates a page from current order data, keeping its pickup
// override and replacement anchor.
func (s *TrackingPageService) Refresh(ctx context.Context, id string) (*models.StatusPage, error) {
	page, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, page)
}

func (s *TrackingPageService) Delete(ctx context.Context, id string) error {
	_, cacheErr := s.cache.Get(ctx, id)
	cached := cacheErr == nil
	if err := s.cache.Delete(ctx, id); err != nil {
		return err
	}

	stored := false
	if s.store != nil {
		deleted, err := s.store.Delete(ctx, id)
		if err != nil {
			return err
		}
		stored = deleted
	}

	if !cached && !stored {
		return ErrPageNotFound
	}
	s.loggerFromContext(ctx).Info("status page deleted", logging.PageIDKey, id)
	return nil
}

// ListSaved returns saved pages, newest first. Without a durable store there
// is nothing to enumerate.
func (s *TrackingPageService) ListSaved(ctx context.Context, limit int) ([]*models.StatusPage, error) {
	if s.store == nil {
		return []*models.StatusPage{}, nil
	}
	return s.store.List(ctx, limit)
}

func (s *TrackingPageService) refresh(ctx context.Context, page *models.StatusPage) (*models.StatusPage, error) {
	order, replacement, err := s.fetchOrder(ctx, page.OrderNumber)
	if err != nil {
		return nil, err
	}

	next := *page
	if next.IsReplacementTracking && replacement != nil &&
		carrier.Normalize(replacement.Value) == carrier.Normalize(next.TrackingNumber) {
		updatedAt := replacement.UpdatedAt
		next.ReplacementTrackingDate = &updatedAt
	}

	now := s.now()
	if err := s.render(&next, order, now); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}

	observability.CountPage(ctx, observability.MetricPageRefreshed, next.CarrierCode)
	s.loggerFromContext(ctx).Info("status page refreshed", logging.PageIDKey, next.ID)
	return &next, nil
}

// render fills order-derived fields and a fresh timeline into page.
func (s *TrackingPageService) render(page *models.StatusPage, order *models.Order, now time.Time) error {
	anchor := page.CustomPickupDate
	if anchor == nil && page.IsReplacementTracking {
		anchor = page.ReplacementTrackingDate
	}
	if anchor != nil {
		if err := validatePickupDate(*anchor, order.CreatedAt, now, s.location); err != nil {
			return err
		}
	}

	classified := carrier.Classify(page.TrackingNumber)

	page.CustomerName = order.CustomerName
	page.OrderID = order.ID
	page.OrderNumber = order.Name
	page.Carrier = classified.Carrier
	page.CarrierCode = classified.CarrierCode
	page.TrackingURL = classified.TrackingURL
	page.Destination = order.ShippingAddress.Destination()
	page.ShippingAddress = order.ShippingAddress
	page.FulfillmentStatus = order.FulfillmentStatus
	page.IsDelivered = order.IsDelivered
	page.DeliveredAt = order.DeliveredAt
	page.UpdatedAt = now
	page.Events = s.synthesizer.Synthesize(timeline.Input{
		OrderCreatedAt:  order.CreatedAt,
		DestinationCity: order.ShippingAddress.City,
		ProvinceCode:    order.ShippingAddress.ProvinceCode,
		IsDelivered:     order.IsDelivered,
		DeliveredAt:     order.DeliveredAt,
		Fulfillments:    order.Fulfillments,
		PickupDate:      anchor,
	})
	return nil
}

func (s *TrackingPageService) fetchOrder(ctx context.Context, number string) (*models.Order, *models.ReplacementTracking, error) {
	order, err := s.gateway.GetOrderByNumber(ctx, number)
	if errors.Is(err, shopify.ErrOrderNotFound) || errors.Is(err, ErrOrderNotFound) {
		return nil, nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	replacement, err := s.gateway.GetReplacementTracking(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return order, replacement, nil
}

// lookup reads the volatile cache first and falls back to the durable store,
// re-populating the cache on a durable hit.
func (s *TrackingPageService) lookup(ctx context.Context, id string) (*models.StatusPage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPageNotFound
	}

	page, err := s.cache.Get(ctx, id)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, ErrPageNotFound) {
		s.loggerFromContext(ctx).Warn("page cache read failed", logging.PageIDKey, id, "error", err)
	}

	if s.store == nil {
		return nil, ErrPageNotFound
	}

	page, err = s.store.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", id, err)
	}

	if err := s.cache.Put(ctx, page); err != nil {
		s.loggerFromContext(ctx).Warn("failed to rehydrate page cache", logging.PageIDKey, id, "error", err)
	}
	return page, nil
}

// persist writes the page to the cache and, for saved pages, the durable
// store. Only the cache write can fail the call.
func (s *TrackingPageService) persist(ctx context.Context, page *models.StatusPage) error {
	if err := s.cache.Put(ctx, page); err != nil {
		return err
	}

	if !page.Saved || s.store == nil {
		return nil
	}
	if err := s.store.Upsert(ctx, page); err != nil {
		observability.CountPage(ctx, observability.MetricPageStoreFailed, page.CarrierCode)
		s.loggerFromContext(ctx).Error("failed to persist status page", logging.PageIDKey, page.ID, "error", err)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "other"
	}
}
