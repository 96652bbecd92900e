package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS status_pages (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  tracking_number TEXT NOT NULL,
  carrier_code TEXT NOT NULL,
  customer_name TEXT NOT NULL DEFAULT '',
  shipping_address TEXT NOT NULL DEFAULT '',
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_status_pages_updated_at ON status_pages(updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_status_pages_order_number ON status_pages(order_number)`,
}

// EnsureSchema creates the status page table and its indexes when missing.
func (s *PageStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
