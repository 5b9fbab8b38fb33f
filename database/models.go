package database

import "time"

// ============================================================================
// MODÈLES DE DONNÉES - Tables
// ============================================================================

// BrandRow - Marque partenaire
type BrandRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreRow - Magasin / Point de vente
type StoreRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRow - Ventes mensuelles d'une marque dans un magasin (brut, avant validation)
type SampleRow struct {
	StoreID     int64  `json:"store_id"`
	BrandID     int64  `json:"brand_id"`
	BrandTier   string `json:"brand_tier"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	DeviceSales int    `json:"device_sales"`
	PlanSales   int    `json:"plan_sales"`
}

// ============================================================================
// MODÈLES POUR EXPORT PARQUET
// ============================================================================

// BrandStatusParquet - Une ligne magasin × marque du rapport RAG
type BrandStatusParquet struct {
	Period             string  `parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8"`
	StoreID            int64   `parquet:"name=store_id, type=INT64"`
	StoreName          string  `parquet:"name=store_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	City               string  `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	StoreStatus        string  `parquet:"name=store_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	BrandID            int64   `parquet:"name=brand_id, type=INT64"`
	BrandName          string  `parquet:"name=brand_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	BrandTier          string  `parquet:"name=brand_tier, type=BYTE_ARRAY, convertedtype=UTF8"`
	CurrentAttachRate  float64 `parquet:"name=current_attach_rate, type=DOUBLE"`
	PreviousAttachRate float64 `parquet:"name=previous_attach_rate, type=DOUBLE"`
	BaseStatus         string  `parquet:"name=base_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	FinalStatus        string  `parquet:"name=final_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	PerformanceChange  string  `parquet:"name=performance_change, type=BYTE_ARRAY, convertedtype=UTF8"`
}
