package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements crée le schéma si absent (idempotent)
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS brands (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		tier       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		city       TEXT NOT NULL,
		address    TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS store_brands (
		store_id INTEGER NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		brand_id INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		PRIMARY KEY (store_id, brand_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attach_rate_samples (
		store_id     INTEGER NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		brand_id     INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
		brand_tier   TEXT NOT NULL,
		month        SMALLINT NOT NULL CHECK (month BETWEEN 1 AND 12),
		year         SMALLINT NOT NULL,
		device_sales INTEGER NOT NULL,
		plan_sales   INTEGER NOT NULL,
		batch_id     UUID,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (store_id, brand_id, year, month)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attach_rate_samples_period ON attach_rate_samples (year, month)`,
	`CREATE INDEX IF NOT EXISTS idx_stores_city ON stores (LOWER(city))`,
}

// EnsureSchema crée les tables nécessaires
// Pas de CHECK sur les ventes: un échantillon malformé doit pouvoir être lu
// puis rejeté explicitement par la couche domaine
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
