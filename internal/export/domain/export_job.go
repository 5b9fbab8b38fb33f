package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	analyticsdomain "ragreport/internal/analytics/domain"
	"ragreport/internal/shared/domain"
)

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "csv"
	ExportFormatParquet ExportFormat = "parquet"
)

// ParseExportFormat normalise un format saisi ("CSV", "parquet"...)
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportFormatCSV, ExportFormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("invalid export format %q (csv|parquet)", s)
}

// ContentType retourne le type MIME du format
func (f ExportFormat) ContentType() string {
	if f == ExportFormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv"
}

// ExportJob représente un job d'export du rapport RAG d'un mois
type ExportJob struct {
	format    ExportFormat
	period    domain.Period
	createdAt time.Time
}

// NewExportJob crée un nouveau job d'export avec validation
func NewExportJob(format ExportFormat, period domain.Period) (*ExportJob, error) {
	if format != ExportFormatCSV && format != ExportFormatParquet {
		return nil, fmt.Errorf("invalid export format %q", format)
	}
	if period.IsZero() {
		return nil, fmt.Errorf("export period is required")
	}

	return &ExportJob{
		format:    format,
		period:    period,
		createdAt: time.Now(),
	}, nil
}

// Format retourne le format d'export
func (ej *ExportJob) Format() ExportFormat {
	return ej.format
}

// Period retourne le mois exporté
func (ej *ExportJob) Period() domain.Period {
	return ej.period
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}

// FileName retourne le nom de fichier proposé au client
func (ej *ExportJob) FileName() string {
	return fmt.Sprintf("rag_status_%s.%s", ej.period, ej.format)
}

// BrandStatusRow représente une ligne d'export: une marque d'un magasin
type BrandStatusRow struct {
	Period             string
	StoreID            int64
	StoreName          string
	City               string
	StoreStatus        string
	BrandID            int64
	BrandName          string
	BrandTier          string
	CurrentAttachRate  float64
	PreviousAttachRate float64
	BaseStatus         string
	FinalStatus        string
	PerformanceChange  string
}

// RowsFromStores aplatit un rapport RAG en lignes magasin × marque
func RowsFromStores(period domain.Period, stores []analyticsdomain.StoreRAGData) []*BrandStatusRow {
	size := 0
	for _, s := range stores {
		size += len(s.BrandRAGDetails)
	}

	label := period.String()
	rows := make([]*BrandStatusRow, 0, size)
	for _, s := range stores {
		for _, d := range s.BrandRAGDetails {
			rows = append(rows, &BrandStatusRow{
				Period:             label,
				StoreID:            int64(s.ID),
				StoreName:          s.StoreName,
				City:               s.City,
				StoreStatus:        string(s.RAGStatus),
				BrandID:            int64(d.BrandID),
				BrandName:          d.BrandName,
				BrandTier:          string(d.BrandTier),
				CurrentAttachRate:  d.CurrentAttachRate,
				PreviousAttachRate: d.PreviousAttachRate,
				BaseStatus:         string(d.BaseStatus),
				FinalStatus:        string(d.FinalStatus),
				PerformanceChange:  string(d.PerformanceChange),
			})
		}
	}
	return rows
}

// ToCSVRow convertit en tableau pour CSV
// strconv plutôt que fmt.Sprintf: appelé une fois par ligne exportée
func (r *BrandStatusRow) ToCSVRow() []string {
	return []string{
		r.Period,
		strconv.FormatInt(r.StoreID, 10),
		r.StoreName,
		r.City,
		r.StoreStatus,
		strconv.FormatInt(r.BrandID, 10),
		r.BrandName,
		r.BrandTier,
		strconv.FormatFloat(r.CurrentAttachRate, 'f', 2, 64),
		strconv.FormatFloat(r.PreviousAttachRate, 'f', 2, 64),
		r.BaseStatus,
		r.FinalStatus,
		r.PerformanceChange,
	}
}

// CSVHeaders retourne les en-têtes CSV
func CSVHeaders() []string {
	return []string{
		"period",
		"store_id",
		"store_name",
		"city",
		"store_status",
		"brand_id",
		"brand_name",
		"brand_tier",
		"current_attach_rate",
		"previous_attach_rate",
		"base_status",
		"final_status",
		"performance_change",
	}
}
