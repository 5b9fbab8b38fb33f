package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ragreport/internal/sales/domain"
	"ragreport/internal/shared/infrastructure"
)

// SampleCommandRepository repository pour les écritures d'échantillons
type SampleCommandRepository struct {
	infrastructure.BaseRepository
	uow infrastructure.UnitOfWork
}

// NewSampleCommandRepository crée un nouveau repository d'écriture pour les échantillons
func NewSampleCommandRepository(db *sql.DB) *SampleCommandRepository {
	return &SampleCommandRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
		uow:            infrastructure.NewUnitOfWork(db),
	}
}

const upsertSampleQuery = `
	INSERT INTO attach_rate_samples
		(store_id, brand_id, brand_tier, month, year, device_sales, plan_sales, batch_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (store_id, brand_id, year, month) DO UPDATE SET
		brand_tier   = EXCLUDED.brand_tier,
		device_sales = EXCLUDED.device_sales,
		plan_sales   = EXCLUDED.plan_sales,
		batch_id     = EXCLUDED.batch_id
`

// SaveBatch enregistre un lot d'échantillons dans une seule transaction
// Un échantillon existant pour la même clé est remplacé
func (r *SampleCommandRepository) SaveBatch(ctx context.Context, batchID uuid.UUID, samples []*domain.AttachRateSample) error {
	if len(samples) == 0 {
		return nil
	}

	return r.uow.Execute(ctx, func(tx *sql.Tx) error {
		stmt, err := r.WithTx(tx).Prepare(ctx, upsertSampleQuery)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, s := range samples {
			_, err := stmt.ExecContext(ctx,
				int64(s.StoreID()),
				int64(s.BrandID()),
				string(s.BrandTier()),
				s.Period().Month(),
				s.Period().Year(),
				s.DeviceSales().Value(),
				s.PlanSales().Value(),
				batchID.String(),
			)
			if err != nil {
				return fmt.Errorf("upsert sample %s: %w", s.Key(), err)
			}
		}
		return nil
	})
}
