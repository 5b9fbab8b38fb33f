package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"ragreport/internal/catalog/domain"
	"ragreport/internal/shared/infrastructure"
)

// StoreQueryRepository repository pour les requêtes de lecture sur les magasins
type StoreQueryRepository struct {
	infrastructure.BaseRepository
}

// NewStoreQueryRepository crée un nouveau repository de lecture pour les magasins
func NewStoreQueryRepository(db *sql.DB) *StoreQueryRepository {
	return &StoreQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

const findStoresQuery = `
	SELECT s.id, s.name, s.city, COALESCE(s.address, ''),
	       b.id, b.name, b.tier
	FROM stores s
	LEFT JOIN store_brands sb ON sb.store_id = s.id
	LEFT JOIN brands b ON b.id = sb.brand_id
	WHERE ($1 = '' OR LOWER(s.city) = LOWER($1))
	  AND ($2 = '' OR EXISTS (
	        SELECT 1 FROM store_brands fsb
	        INNER JOIN brands fb ON fb.id = fsb.brand_id
	        WHERE fsb.store_id = s.id AND LOWER(fb.name) = LOWER($2)))
	ORDER BY s.id, b.id
`

// FindStores récupère les magasins filtrés avec leurs marques partenaires
// Une seule requête avec JOIN: les lignes d'un même magasin sont consécutives
func (r *StoreQueryRepository) FindStores(ctx context.Context, filter domain.StoreFilter) ([]*domain.Store, error) {
	rows, err := r.Query(ctx, findStoresQuery, filter.City, filter.Brand)
	if err != nil {
		return nil, fmt.Errorf("find stores: %w", err)
	}
	defer rows.Close()

	type storeData struct {
		id      int64
		name    string
		city    string
		address string
		brands  []*domain.Brand
	}

	var ordered []*storeData
	var current *storeData

	for rows.Next() {
		var (
			storeID   int64
			storeName string
			city      string
			address   string
			brandID   sql.NullInt64
			brandName sql.NullString
			brandTier sql.NullString
		)

		if err := rows.Scan(&storeID, &storeName, &city, &address, &brandID, &brandName, &brandTier); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}

		if current == nil || current.id != storeID {
			current = &storeData{id: storeID, name: storeName, city: city, address: address}
			ordered = append(ordered, current)
		}

		// LEFT JOIN: magasin sans marque partenaire
		if !brandID.Valid {
			continue
		}
		brand, err := domain.NewBrand(domain.BrandID(brandID.Int64), brandName.String, domain.ParseBrandTier(brandTier.String))
		if err != nil {
			return nil, fmt.Errorf("store %d: %w", storeID, err)
		}
		current.brands = append(current.brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	stores := make([]*domain.Store, 0, len(ordered))
	for _, d := range ordered {
		store, err := domain.NewStore(domain.StoreID(d.id), d.name, d.city, d.address, d.brands)
		if err != nil {
			return nil, fmt.Errorf("store %d: %w", d.id, err)
		}
		stores = append(stores, store)
	}

	return stores, nil
}
