package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ragreport/database"
	catalogdomain "ragreport/internal/catalog/domain"
	"ragreport/internal/sales/domain"
	shareddomain "ragreport/internal/shared/domain"
	sharedinfra "ragreport/internal/shared/infrastructure"
)

// CSVColumns colonnes attendues dans un fichier d'échantillons (ordre libre)
var CSVColumns = []string{"store_id", "brand_id", "brand_tier", "month", "year", "device_sales", "plan_sales"}

// SampleWriter persiste un lot d'échantillons validés
type SampleWriter interface {
	SaveBatch(ctx context.Context, batchID uuid.UUID, samples []*domain.AttachRateSample) error
}

// ReportInvalidator invalide les rapports mis en cache pour un mois
type ReportInvalidator interface {
	InvalidatePeriod(period shareddomain.Period) int
}

// RowError décrit une ligne rejetée à l'ingestion
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap expose la cause (ex: *domain.DataIntegrityError)
func (e RowError) Unwrap() error {
	return e.err
}

// IngestResult résultat d'un lot d'ingestion
type IngestResult struct {
	BatchID  uuid.UUID             `json:"batchId"`
	Accepted int                   `json:"accepted"`
	Rejected []RowError            `json:"rejected"`
	Periods  []shareddomain.Period `json:"-"`
}

// PeriodLabels retourne les mois touchés au format YYYY-MM
func (r *IngestResult) PeriodLabels() []string {
	labels := make([]string, len(r.Periods))
	for i, p := range r.Periods {
		labels[i] = p.String()
	}
	return labels
}

// IngestService valide et enregistre des échantillons puis invalide le cache
type IngestService struct {
	writer      SampleWriter
	invalidator ReportInvalidator
}

// NewIngestService crée une nouvelle instance de IngestService
// invalidator peut être nil (pas de cache)
func NewIngestService(writer SampleWriter, invalidator ReportInvalidator) *IngestService {
	return &IngestService{writer: writer, invalidator: invalidator}
}

// IngestCSV lit un CSV d'échantillons et l'enregistre
// Une ligne invalide est rejetée sans bloquer les autres
func (s *IngestService) IngestCSV(ctx context.Context, r io.Reader) (*IngestResult, error) {
	rows, rowErrs, err := parseSamplesCSV(r)
	if err != nil {
		return nil, err
	}

	result, err := s.ingest(ctx, rows)
	if err != nil {
		return nil, err
	}
	result.Rejected = append(rowErrs, result.Rejected...)
	sort.Slice(result.Rejected, func(i, j int) bool {
		return result.Rejected[i].Line < result.Rejected[j].Line
	})
	return result, nil
}

// Ingest enregistre des lignes brutes déjà décodées
func (s *IngestService) Ingest(ctx context.Context, rows []database.SampleRow) (*IngestResult, error) {
	numbered := make([]numberedRow, len(rows))
	for i, row := range rows {
		numbered[i] = numberedRow{line: i + 1, row: row}
	}
	return s.ingest(ctx, numbered)
}

type numberedRow struct {
	line int
	row  database.SampleRow
}

func (s *IngestService) ingest(ctx context.Context, rows []numberedRow) (*IngestResult, error) {
	result := &IngestResult{BatchID: uuid.New()}

	samples := make([]*domain.AttachRateSample, 0, len(rows))
	seen := make(map[domain.SampleKey]int, len(rows))
	periods := make(map[shareddomain.Period]struct{})

	for _, nr := range rows {
		sample, err := toSample(nr.row)
		if err != nil {
			result.Rejected = append(result.Rejected, RowError{Line: nr.line, Reason: err.Error(), err: err})
			continue
		}

		// Dernière occurrence gagnante, comme l'upsert en base
		if idx, ok := seen[sample.Key()]; ok {
			samples[idx] = sample
			continue
		}
		seen[sample.Key()] = len(samples)
		samples = append(samples, sample)
		periods[sample.Period()] = struct{}{}
	}

	if len(result.Rejected) > 0 {
		sharedinfra.RejectedSamplesTotal.Add(float64(len(result.Rejected)))
	}
	if len(samples) == 0 {
		return result, nil
	}

	if err := s.writer.SaveBatch(ctx, result.BatchID, samples); err != nil {
		return nil, fmt.Errorf("save batch %s: %w", result.BatchID, err)
	}
	result.Accepted = len(samples)
	sharedinfra.IngestedSamplesTotal.Add(float64(len(samples)))

	for p := range periods {
		result.Periods = append(result.Periods, p)
	}
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Before(result.Periods[j])
	})

	s.invalidate(result.Periods)

	slog.Info("samples ingested",
		"batch", result.BatchID,
		"accepted", result.Accepted,
		"rejected", len(result.Rejected),
		"periods", result.PeriodLabels())

	return result, nil
}

// invalidate supprime les rapports du mois ingéré et du mois suivant,
// dont la tendance dépend de ce mois
func (s *IngestService) invalidate(periods []shareddomain.Period) {
	if s.invalidator == nil {
		return
	}
	done := make(map[shareddomain.Period]struct{}, len(periods)*2)
	for _, p := range periods {
		for _, target := range []shareddomain.Period{p, p.Next()} {
			if _, ok := done[target]; ok {
				continue
			}
			done[target] = struct{}{}
			s.invalidator.InvalidatePeriod(target)
		}
	}
}

func toSample(row database.SampleRow) (*domain.AttachRateSample, error) {
	tier := catalogdomain.ParseBrandTier(row.BrandTier)
	if !tier.IsKnown() {
		return nil, fmt.Errorf("unknown brand tier %q", row.BrandTier)
	}
	period, err := shareddomain.NewPeriod(row.Month, row.Year)
	if err != nil {
		return nil, err
	}
	key := domain.SampleKey{
		StoreID: catalogdomain.StoreID(row.StoreID),
		BrandID: catalogdomain.BrandID(row.BrandID),
		Period:  period,
	}
	return domain.NewAttachRateSample(key, tier, row.DeviceSales, row.PlanSales)
}

// ErrMissingColumn colonne obligatoire absente de l'en-tête CSV
var ErrMissingColumn = errors.New("missing CSV column")

// parseSamplesCSV décode un CSV d'échantillons
// Les lignes mal formées sont retournées en RowError (numéro de ligne fichier)
func parseSamplesCSV(r io.Reader) ([]numberedRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty CSV: %w", ErrMissingColumn)
		}
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range CSVColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var (
		rows    []numberedRow
		rowErrs []RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			// Seule une erreur de format est propre à la ligne; une erreur de lecture arrête tout
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, nil, fmt.Errorf("read CSV: %w", err)
			}
			rowErrs = append(rowErrs, RowError{Line: line, Reason: err.Error(), err: err})
			continue
		}

		row, err := decodeRecord(record, index)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: err.Error(), err: err})
			continue
		}
		rows = append(rows, numberedRow{line: line, row: row})
	}

	return rows, rowErrs, nil
}

func decodeRecord(record []string, index map[string]int) (database.SampleRow, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(record) {
			return "", fmt.Errorf("%s: missing value", name)
		}
		return strings.TrimSpace(record[i]), nil
	}
	intField := func(name string) (int, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer", name, raw)
		}
		return v, nil
	}

	var row database.SampleRow
	var err error
	var v int

	if v, err = intField("store_id"); err != nil {
		return row, err
	}
	row.StoreID = int64(v)
	if v, err = intField("brand_id"); err != nil {
		return row, err
	}
	row.BrandID = int64(v)
	if row.BrandTier, err = field("brand_tier"); err != nil {
		return row, err
	}
	if row.Month, err = intField("month"); err != nil {
		return row, err
	}
	if row.Year, err = intField("year"); err != nil {
		return row, err
	}
	if row.DeviceSales, err = intField("device_sales"); err != nil {
		return row, err
	}
	if row.PlanSales, err = intField("plan_sales"); err != nil {
		return row, err
	}
	return row, nil
}
