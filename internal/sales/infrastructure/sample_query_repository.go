package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	catalogdomain "ragreport/internal/catalog/domain"
	"ragreport/internal/sales/domain"
	shareddomain "ragreport/internal/shared/domain"
	"ragreport/internal/shared/infrastructure"
)

// SampleQueryRepository repository pour les requêtes de lecture sur les échantillons
type SampleQueryRepository struct {
	infrastructure.BaseRepository
}

// NewSampleQueryRepository crée un nouveau repository de lecture pour les échantillons
func NewSampleQueryRepository(db *sql.DB) *SampleQueryRepository {
	return &SampleQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

const findSamplesByPeriodQuery = `
	SELECT s.store_id, s.brand_id, s.brand_tier, s.device_sales, s.plan_sales
	FROM attach_rate_samples s
	WHERE s.year = $1 AND s.month = $2
	  AND s.store_id = ANY($3)
	ORDER BY s.store_id, s.brand_id
`

// FindByPeriod retourne les échantillons d'un mois pour les magasins donnés
// Les lignes invalides sont retournées à part, jamais corrigées
func (r *SampleQueryRepository) FindByPeriod(
	ctx context.Context,
	period shareddomain.Period,
	storeIDs []catalogdomain.StoreID,
) ([]*domain.AttachRateSample, []*domain.DataIntegrityError, error) {
	if len(storeIDs) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, len(storeIDs))
	for i, id := range storeIDs {
		ids[i] = int64(id)
	}

	rows, err := r.Query(ctx, findSamplesByPeriodQuery, period.Year(), period.Month(), pq.Array(ids))
	if err != nil {
		return nil, nil, fmt.Errorf("find samples for %s: %w", period, err)
	}
	defer rows.Close()

	var (
		samples  []*domain.AttachRateSample
		rejected []*domain.DataIntegrityError
	)
	for rows.Next() {
		var (
			storeID, brandID       int64
			tier                   string
			deviceSales, planSales int
		)
		if err := rows.Scan(&storeID, &brandID, &tier, &deviceSales, &planSales); err != nil {
			return nil, nil, fmt.Errorf("scan sample: %w", err)
		}

		key := domain.SampleKey{
			StoreID: catalogdomain.StoreID(storeID),
			BrandID: catalogdomain.BrandID(brandID),
			Period:  period,
		}
		sample, err := domain.NewAttachRateSample(key, catalogdomain.ParseBrandTier(tier), deviceSales, planSales)
		if err != nil {
			var integrityErr *domain.DataIntegrityError
			if errors.As(err, &integrityErr) {
				rejected = append(rejected, integrityErr)
				continue
			}
			return nil, nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate samples: %w", err)
	}

	return samples, rejected, nil
}
