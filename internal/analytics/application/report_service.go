package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ragreport/internal/analytics/domain"
	catalogdomain "ragreport/internal/catalog/domain"
	salesdomain "ragreport/internal/sales/domain"
	shareddomain "ragreport/internal/shared/domain"
	sharedinfra "ragreport/internal/shared/infrastructure"
)

// StoreSource fournit les magasins et leurs marques partenaires
type StoreSource interface {
	FindStores(ctx context.Context, filter catalogdomain.StoreFilter) ([]*catalogdomain.Store, error)
}

// SampleSource fournit les échantillons d'un mois pour un ensemble de magasins
type SampleSource interface {
	FindByPeriod(
		ctx context.Context,
		period shareddomain.Period,
		storeIDs []catalogdomain.StoreID,
	) ([]*salesdomain.AttachRateSample, []*salesdomain.DataIntegrityError, error)
}

const (
	reportKindStatus  = "status"
	reportKindSummary = "summary"

	defaultCacheTTL = 5 * time.Minute
	defaultWorkers  = 4
)

// Options configuration du ReportService
type Options struct {
	Criteria domain.Criteria
	Policy   domain.EscalationPolicy
	CacheTTL time.Duration
	Workers  int
	// Now horloge injectable, time.Now par défaut
	Now func() time.Time
}

// ReportService orchestre le calcul des rapports RAG autour du classifieur pur
type ReportService struct {
	stores   StoreSource
	samples  SampleSource
	cache    sharedinfra.Cache
	criteria domain.Criteria
	policy   domain.EscalationPolicy
	cacheTTL time.Duration
	workers  int
	now      func() time.Time
}

// NewReportService crée une nouvelle instance de ReportService
// cache peut être nil: chaque rapport est alors recalculé
func NewReportService(
	stores StoreSource,
	samples SampleSource,
	cache sharedinfra.Cache,
	opts Options,
) (*ReportService, error) {
	criteria := opts.Criteria
	if criteria == nil {
		criteria = domain.DefaultCriteria()
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	s := &ReportService{
		stores:   stores,
		samples:  samples,
		cache:    cache,
		criteria: criteria.Clone(),
		policy:   opts.Policy,
		cacheTTL: opts.CacheTTL,
		workers:  opts.Workers,
		now:      opts.Now,
	}
	if s.policy == nil {
		s.policy = domain.NoEscalation{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	if s.workers <= 0 {
		s.workers = defaultWorkers
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Criteria retourne une copie de la table de seuils active
func (s *ReportService) Criteria() domain.Criteria {
	return s.criteria.Clone()
}

// Policy retourne la politique d'escalade active
func (s *ReportService) Policy() domain.EscalationPolicy {
	return s.policy
}

// StatusReport retourne le rapport complet par magasin
func (s *ReportService) StatusReport(ctx context.Context, q ReportQuery) (*RAGStatusResponse, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}
	return loadOrCompute(s, reportKindStatus, q, func() (*RAGStatusResponse, error) {
		return s.buildStatus(ctx, q)
	})
}

// SummaryReport retourne la vue condensée par magasin
func (s *ReportService) SummaryReport(ctx context.Context, q ReportQuery) (*RAGSummaryResponse, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}
	return loadOrCompute(s, reportKindSummary, q, func() (*RAGSummaryResponse, error) {
		status, err := s.buildStatus(ctx, q)
		if err != nil {
			return nil, err
		}
		condensed := make(map[catalogdomain.StoreID]domain.StoreRAGSummary, len(status.Stores))
		for _, store := range status.Stores {
			condensed[store.ID] = domain.Condense(store)
		}
		return &RAGSummaryResponse{
			RAGSummary: condensed,
			Summary:    status.Summary,
			Metadata:   status.Metadata,
		}, nil
	})
}

// InvalidatePeriod supprime les rapports en cache d'un mois
// Retourne le nombre d'entrées supprimées
func (s *ReportService) InvalidatePeriod(period shareddomain.Period) int {
	if s.cache == nil {
		return 0
	}
	prefix := sharedinfra.NewCacheKeyBuilder().
		Add("rag").
		AddInt(period.Year()).
		AddInt(period.Month()).
		Prefix()

	removed := s.cache.DeletePrefix(prefix)
	if removed > 0 {
		sharedinfra.CacheInvalidationsTotal.Add(float64(removed))
		slog.Debug("report cache invalidated", "period", period.String(), "entries", removed)
	}
	return removed
}

func (s *ReportService) normalize(q ReportQuery) (ReportQuery, error) {
	if err := q.Validate(); err != nil {
		return q, err
	}
	if q.Period.IsZero() {
		q.Period = shareddomain.CurrentPeriod(s.now())
	}
	// Filtres insensibles à la casse: la clé de cache et filtersApplied voient la même valeur
	q.City = strings.ToLower(strings.TrimSpace(q.City))
	q.Brand = strings.ToLower(strings.TrimSpace(q.Brand))
	return q, nil
}

func (s *ReportService) cacheKey(kind string, q ReportQuery) string {
	return sharedinfra.NewCacheKeyBuilder().
		Add("rag").
		AddInt(q.Period.Year()).
		AddInt(q.Period.Month()).
		Add(kind).
		AddOrAll(q.City).
		AddOrAll(q.Brand).
		AddOrAll(string(q.Status)).
		Build()
}

// loadOrCompute sert la réponse depuis le cache ou la calcule puis la stocke (JSON)
func loadOrCompute[T any](s *ReportService, kind string, q ReportQuery, compute func() (*T, error)) (*T, error) {
	key := s.cacheKey(kind, q)

	if s.cache != nil {
		if raw, found := s.cache.Get(key); found {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				sharedinfra.ReportsTotal.WithLabelValues(kind, "hit").Inc()
				return &cached, nil
			}
			// Entrée illisible: on recalcule
			s.cache.Delete(key)
		}
	}

	start := time.Now()
	resp, err := compute()
	if err != nil {
		return nil, err
	}
	sharedinfra.ReportDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	sharedinfra.ReportsTotal.WithLabelValues(kind, "miss").Inc()

	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.cache.Set(key, raw, s.cacheTTL)
		} else {
			slog.Warn("report not cached", "key", key, "err", err)
		}
	}
	return resp, nil
}

// storeResult résultat de classification d'un magasin
type storeResult struct {
	data   domain.StoreRAGData
	noData bool
}

// buildStatus charge les données, classe chaque magasin en parallèle puis agrège
func (s *ReportService) buildStatus(ctx context.Context, q ReportQuery) (*RAGStatusResponse, error) {
	current := q.Period
	previous := current.Previous()

	stores, err := s.stores.FindStores(ctx, q.StoreFilter())
	if err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}

	ids := make([]catalogdomain.StoreID, len(stores))
	for i, store := range stores {
		ids[i] = store.ID()
	}

	currentSamples, currentRejected, err := s.samples.FindByPeriod(ctx, current, ids)
	if err != nil {
		return nil, fmt.Errorf("load samples %s: %w", current, err)
	}
	previousSamples, previousRejected, err := s.samples.FindByPeriod(ctx, previous, ids)
	if err != nil {
		return nil, fmt.Errorf("load samples %s: %w", previous, err)
	}

	// Mois précédent indexé par (magasin, marque); un échantillon rejeté compte comme absent
	type pair struct {
		store catalogdomain.StoreID
		brand catalogdomain.BrandID
	}
	previousByPair := make(map[pair]*salesdomain.AttachRateSample, len(previousSamples))
	for _, sample := range previousSamples {
		previousByPair[pair{sample.StoreID(), sample.BrandID()}] = sample
	}
	currentByStore := make(map[catalogdomain.StoreID][]*salesdomain.AttachRateSample, len(stores))
	for _, sample := range currentSamples {
		currentByStore[sample.StoreID()] = append(currentByStore[sample.StoreID()], sample)
	}

	// Chaque tâche écrit uniquement à son propre index: pas de verrou
	results := make([]storeResult, len(stores))
	pool := sharedinfra.NewWorkerPoolWithContext(ctx, s.workers)
	pool.Start()

	for i, store := range stores {
		i, store := i, store
		err := pool.Submit(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			details := make([]domain.BrandRAGDetail, 0, len(currentByStore[store.ID()]))
			for _, sample := range currentByStore[store.ID()] {
				detail, err := domain.Classify(sample, previousByPair[pair{store.ID(), sample.BrandID()}], s.criteria)
				if err != nil {
					return fmt.Errorf("store %d: %w", store.ID(), err)
				}
				if brand, ok := store.PartnerBrand(sample.BrandID()); ok {
					detail = detail.WithBrandName(brand.Name())
				}
				details = append(details, detail)
			}

			data, err := domain.Aggregate(store, domain.ApplyPolicy(details, s.policy))
			if errors.Is(err, domain.ErrNoData) {
				results[i] = storeResult{noData: true}
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = storeResult{data: data}
			return nil
		})
		if err != nil {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	meta := ReportMetadata{
		CurrentMonth:  current.Month(),
		PreviousMonth: previous.Month(),
		Year:          current.Year(),
		PreviousYear:  previous.Year(),
		Criteria:      s.criteria.Clone(),
		FiltersApplied: FiltersApplied{
			City:   q.City,
			Brand:  q.Brand,
			Status: q.Status,
		},
		Policy:           s.policy.Name(),
		GeneratedAt:      s.now().UTC(),
		RejectedSamples:  rejectedSamples(currentRejected, previousRejected),
		InsufficientData: []catalogdomain.StoreID{},
	}

	out := make([]domain.StoreRAGData, 0, len(results))
	for i, r := range results {
		if r.noData {
			meta.InsufficientData = append(meta.InsufficientData, stores[i].ID())
			continue
		}
		if q.Status != "" && r.data.RAGStatus != q.Status {
			continue
		}
		out = append(out, r.data)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.Slice(meta.InsufficientData, func(i, j int) bool {
		return meta.InsufficientData[i] < meta.InsufficientData[j]
	})

	if n := len(meta.RejectedSamples); n > 0 {
		sharedinfra.RejectedSamplesTotal.Add(float64(n))
		slog.Warn("samples rejected", "period", current.String(), "count", n)
	}
	if n := len(meta.InsufficientData); n > 0 {
		sharedinfra.ExcludedStoresTotal.Add(float64(n))
	}

	return &RAGStatusResponse{
		Stores:   out,
		Summary:  domain.Summarize(out),
		Metadata: meta,
	}, nil
}

func rejectedSamples(groups ...[]*salesdomain.DataIntegrityError) []RejectedSample {
	out := []RejectedSample{}
	for _, group := range groups {
		for _, e := range group {
			out = append(out, RejectedSample{
				StoreID: e.Key.StoreID,
				BrandID: e.Key.BrandID,
				Period:  e.Key.Period.String(),
				Reason:  e.Reason,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		if out[i].BrandID != out[j].BrandID {
			return out[i].BrandID < out[j].BrandID
		}
		return out[i].Period > out[j].Period
	})
	return out
}
