package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"ragreport/database"
	analyticsapp "ragreport/internal/analytics/application"
	analyticsdomain "ragreport/internal/analytics/domain"
	shareddomain "ragreport/internal/shared/domain"
)

type fakeReporter struct {
	resp *analyticsapp.RAGStatusResponse
	err  error
}

func (f *fakeReporter) StatusReport(_ context.Context, _ analyticsapp.ReportQuery) (*analyticsapp.RAGStatusResponse, error) {
	return f.resp, f.err
}

func statusFixture() *analyticsapp.RAGStatusResponse {
	return &analyticsapp.RAGStatusResponse{
		Stores: []analyticsdomain.StoreRAGData{
			{
				ID: 1, StoreName: "Store Downtown", City: "Lyon", RAGStatus: analyticsdomain.StatusAmber,
				BrandRAGDetails: []analyticsdomain.BrandRAGDetail{
					{BrandID: 10, BrandName: "Samsung", BrandTier: "A_PLUS", CurrentAttachRate: 75, PreviousAttachRate: 70,
						BaseStatus: "green", FinalStatus: "green", PerformanceChange: "improved"},
					{BrandID: 11, BrandName: "Xiaomi, Inc", BrandTier: "B", CurrentAttachRate: 100.0 / 3, PreviousAttachRate: 40,
						BaseStatus: "amber", FinalStatus: "amber", PerformanceChange: "declined"},
				},
			},
			{
				ID: 2, StoreName: "Store Mall", City: "Paris", RAGStatus: analyticsdomain.StatusRed,
				BrandRAGDetails: []analyticsdomain.BrandRAGDetail{
					{BrandID: 10, BrandName: "Samsung", BrandTier: "A_PLUS",
						BaseStatus: "red", FinalStatus: "red", PerformanceChange: "stable"},
				},
			},
		},
		Metadata: analyticsapp.ReportMetadata{CurrentMonth: 3, PreviousMonth: 2, Year: 2024, PreviousYear: 2024},
	}
}

var march = analyticsapp.ReportQuery{Period: shareddomain.MustNewPeriod(3, 2024)}

func TestExportService_ExportCSV_Golden(t *testing.T) {
	svc := NewExportService(&fakeReporter{resp: statusFixture()})

	data, err := svc.ExportCSV(context.Background(), march)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "rag_status_csv", data)
}

func TestExportService_ExportCSV_ParsesBack(t *testing.T) {
	svc := NewExportService(&fakeReporter{resp: statusFixture()})

	data, err := svc.ExportCSV(context.Background(), march)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Xiaomi, Inc", records[2][6])
}

func TestExportService_Prepare(t *testing.T) {
	svc := NewExportService(&fakeReporter{resp: statusFixture()})

	job, rows, err := svc.Prepare(context.Background(), march, "parquet")
	require.NoError(t, err)
	assert.Equal(t, "rag_status_2024-03.parquet", job.FileName())
	assert.Len(t, rows, 3)
}

func TestExportService_PropagatesReportError(t *testing.T) {
	cfgErr := &analyticsdomain.ConfigurationError{Tier: "Z", Reason: "no thresholds configured"}
	svc := NewExportService(&fakeReporter{err: cfgErr})

	_, err := svc.ExportCSV(context.Background(), march)
	assert.True(t, errors.Is(err, analyticsdomain.ErrConfiguration))

	_, err = svc.ExportParquetBytes(context.Background(), march)
	assert.ErrorIs(t, err, analyticsdomain.ErrConfiguration)
}

func TestExportService_ExportParquet_RoundTrip(t *testing.T) {
	svc := NewExportService(&fakeReporter{resp: statusFixture()})
	path := filepath.Join(t.TempDir(), "rag.parquet")

	n, err := svc.ExportParquet(context.Background(), march, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(database.BrandStatusParquet), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(3), pr.GetNumRows())
	rows := make([]database.BrandStatusParquet, 3)
	require.NoError(t, pr.Read(&rows))

	assert.Equal(t, "2024-03", rows[0].Period)
	assert.Equal(t, "Xiaomi, Inc", rows[1].BrandName)
	assert.InDelta(t, 33.333, rows[1].CurrentAttachRate, 0.001)
	assert.Equal(t, "red", rows[2].StoreStatus)
}

func TestExportService_ExportParquetBytes(t *testing.T) {
	svc := NewExportService(&fakeReporter{resp: statusFixture()})

	data, err := svc.ExportParquetBytes(context.Background(), march)
	require.NoError(t, err)

	// Magic "PAR1" en tête et en fin de fichier
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}
