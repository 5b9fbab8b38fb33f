package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"ragreport/database"
	analyticsapp "ragreport/internal/analytics/application"
	"ragreport/internal/export/domain"
)

// StatusReporter fournit le rapport RAG complet à exporter
type StatusReporter interface {
	StatusReport(ctx context.Context, q analyticsapp.ReportQuery) (*analyticsapp.RAGStatusResponse, error)
}

// ExportService exporte le rapport RAG en CSV ou Parquet
type ExportService struct {
	reports      StatusReporter
	parallelism  int64
	rowGroupSize int64
}

// NewExportService crée une nouvelle instance de ExportService
func NewExportService(reports StatusReporter) *ExportService {
	return &ExportService{
		reports:      reports,
		parallelism:  4,
		rowGroupSize: 16 * 1024 * 1024,
	}
}

// Prepare calcule le rapport et retourne le job d'export avec ses lignes magasin × marque
func (s *ExportService) Prepare(
	ctx context.Context,
	q analyticsapp.ReportQuery,
	format domain.ExportFormat,
) (*domain.ExportJob, []*domain.BrandStatusRow, error) {
	report, err := s.reports.StatusReport(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	period := report.Metadata.Period()
	job, err := domain.NewExportJob(format, period)
	if err != nil {
		return nil, nil, err
	}
	return job, domain.RowsFromStores(period, report.Stores), nil
}

// WriteCSV écrit le rapport en CSV dans w
func (s *ExportService) WriteCSV(ctx context.Context, q analyticsapp.ReportQuery, w io.Writer) (int, error) {
	_, rows, err := s.Prepare(ctx, q, domain.ExportFormatCSV)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.CSVHeaders()); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := cw.Write(row.ToCSVRow()); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush CSV: %w", err)
	}
	return len(rows), nil
}

// ExportCSV génère le CSV en mémoire
func (s *ExportService) ExportCSV(ctx context.Context, q analyticsapp.ReportQuery) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 64*1024))
	if _, err := s.WriteCSV(ctx, q, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportParquet écrit le rapport dans un fichier Parquet (compression Snappy)
// Retourne le nombre de lignes écrites
func (s *ExportService) ExportParquet(ctx context.Context, q analyticsapp.ReportQuery, path string) (int, error) {
	start := time.Now()
	_, rows, err := s.Prepare(ctx, q, domain.ExportFormatParquet)
	if err != nil {
		return 0, err
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(database.BrandStatusParquet), s.parallelism)
	if err != nil {
		return 0, fmt.Errorf("init parquet writer: %w", err)
	}
	pw.RowGroupSize = s.rowGroupSize
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(toParquet(row)); err != nil {
			_ = pw.WriteStop()
			return 0, fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return 0, fmt.Errorf("finalize parquet: %w", err)
	}

	slog.Info("parquet export written", "path", path, "rows", len(rows), "duration", time.Since(start))
	return len(rows), nil
}

// ExportParquetBytes génère le Parquet via un fichier temporaire
// Le writer Parquet a besoin d'un fichier seekable
func (s *ExportService) ExportParquetBytes(ctx context.Context, q analyticsapp.ReportQuery) ([]byte, error) {
	dir, err := os.MkdirTemp("", "ragreport-export-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.parquet")
	if _, err := s.ExportParquet(ctx, q, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func toParquet(r *domain.BrandStatusRow) database.BrandStatusParquet {
	return database.BrandStatusParquet{
		Period:             r.Period,
		StoreID:            r.StoreID,
		StoreName:          r.StoreName,
		City:               r.City,
		StoreStatus:        r.StoreStatus,
		BrandID:            r.BrandID,
		BrandName:          r.BrandName,
		BrandTier:          r.BrandTier,
		CurrentAttachRate:  r.CurrentAttachRate,
		PreviousAttachRate: r.PreviousAttachRate,
		BaseStatus:         r.BaseStatus,
		FinalStatus:        r.FinalStatus,
		PerformanceChange:  r.PerformanceChange,
	}
}
