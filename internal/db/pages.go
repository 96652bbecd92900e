package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/trackpage/internal/crypto"
	"github.com/gitshopapp/trackpage/internal/models"
)

var ErrNotFound = errors.New("status page not found")

const defaultListLimit = 50

// querier is the subset of pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var _ querier = (*pgxpool.Pool)(nil)

type PageStore struct {
	pool   querier
	sealer crypto.Sealer
}

func NewPageStore(pool *pgxpool.Pool, sealer crypto.Sealer) (*PageStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is required")
	}
	if sealer == nil {
		return nil, fmt.Errorf("sealer is required")
	}
	return &PageStore{pool: pool, sealer: sealer}, nil
}

// pageRow is the column form of a status page. Personal fields live in their
// own sealed columns and are blanked out of the payload.
type pageRow struct {
	ID              string
	OrderID         string
	OrderNumber     string
	TrackingNumber  string
	CarrierCode     string
	CustomerName    string
	ShippingAddress string
	Payload         []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func encodePage(page *models.StatusPage, sealer crypto.Sealer) (pageRow, error) {
	address, err := json.Marshal(page.ShippingAddress)
	if err != nil {
		return pageRow{}, fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	sealedName, err := sealer.Seal(page.CustomerName, page.ID)
	if err != nil {
		return pageRow{}, fmt.Errorf("failed to seal customer name: %w", err)
	}
	sealedAddress, err := sealer.Seal(string(address), page.ID)
	if err != nil {
		return pageRow{}, fmt.Errorf("failed to seal shipping address: %w", err)
	}

	stripped := *page
	stripped.CustomerName = ""
	stripped.ShippingAddress = models.ShippingAddress{}
	payload, err := json.Marshal(&stripped)
	if err != nil {
		return pageRow{}, fmt.Errorf("failed to marshal page: %w", err)
	}

	return pageRow{
		ID:              page.ID,
		OrderID:         page.OrderID,
		OrderNumber:     page.OrderNumber,
		TrackingNumber:  page.TrackingNumber,
		CarrierCode:     page.CarrierCode,
		CustomerName:    sealedName,
		ShippingAddress: sealedAddress,
		Payload:         payload,
		CreatedAt:       page.CreatedAt,
		UpdatedAt:       page.UpdatedAt,
	}, nil
}

func decodePage(row pageRow, sealer crypto.Sealer) (*models.StatusPage, error) {
	var page models.StatusPage
	if err := json.Unmarshal(row.Payload, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page %s: %w", row.ID, err)
	}

	name, err := sealer.Open(row.CustomerName, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to open customer name for %s: %w", row.ID, err)
	}
	address, err := sealer.Open(row.ShippingAddress, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to open shipping address for %s: %w", row.ID, err)
	}
	if address != "" {
		if err := json.Unmarshal([]byte(address), &page.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address for %s: %w", row.ID, err)
		}
	}

	page.ID = row.ID
	page.CustomerName = name
	page.CreatedAt = row.CreatedAt
	page.UpdatedAt = row.UpdatedAt
	page.Saved = true
	return &page, nil
}

// Upsert inserts or replaces a saved page.
func (s *PageStore) Upsert(ctx context.Context, page *models.StatusPage) error {
	if page == nil || page.ID == "" {
		return fmt.Errorf("page with id is required")
	}

	row, err := encodePage(page, s.sealer)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO status_pages (
  id, order_id, order_number, tracking_number, carrier_code,
  customer_name, shipping_address, payload, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  order_id = EXCLUDED.order_id,
  order_number = EXCLUDED.order_number,
  tracking_number = EXCLUDED.tracking_number,
  carrier_code = EXCLUDED.carrier_code,
  customer_name = EXCLUDED.customer_name,
  shipping_address = EXCLUDED.shipping_address,
  payload = EXCLUDED.payload,
  updated_at = EXCLUDED.updated_at
`,
		row.ID, row.OrderID, row.OrderNumber, row.TrackingNumber, row.CarrierCode,
		row.CustomerName, row.ShippingAddress, row.Payload, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page %s: %w", page.ID, err)
	}
	return nil
}

const selectPageColumns = `
SELECT
  id, order_id, order_number, tracking_number, carrier_code,
  customer_name, shipping_address, payload, created_at, updated_at
FROM status_pages`

func scanRow(row pgx.Row) (pageRow, error) {
	var r pageRow
	err := row.Scan(
		&r.ID, &r.OrderID, &r.OrderNumber, &r.TrackingNumber, &r.CarrierCode,
		&r.CustomerName, &r.ShippingAddress, &r.Payload, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *PageStore) Get(ctx context.Context, id string) (*models.StatusPage, error) {
	row, err := scanRow(s.pool.QueryRow(ctx, selectPageColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", id, err)
	}
	return decodePage(row, s.sealer)
}

// List returns saved pages, most recently updated first.
func (s *PageStore) List(ctx context.Context, limit int) ([]*models.StatusPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.pool.Query(ctx, selectPageColumns+` ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := make([]*models.StatusPage, 0, limit)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page, err := decodePage(row, s.sealer)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}
	return pages, nil
}

// Delete removes a page and reports whether it existed.
func (s *PageStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM status_pages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete page %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// PruneOlderThan deletes pages not updated since cutoff.
func (s *PageStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM status_pages WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune pages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PageStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
