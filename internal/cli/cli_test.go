package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "ragreport/api/v1"
	analyticsdomain "ragreport/internal/analytics/domain"
	salesapp "ragreport/internal/sales/application"
	shareddomain "ragreport/internal/shared/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    QueryOptions
		want    shareddomain.Period
		wantErr bool
	}{
		{name: "default period", opts: QueryOptions{}},
		{name: "period flag", opts: QueryOptions{Period: "2024-02"}, want: shareddomain.MustNewPeriod(2, 2024)},
		{name: "month and year", opts: QueryOptions{Month: 12, Year: 2023}, want: shareddomain.MustNewPeriod(12, 2023)},
		{name: "month without year", opts: QueryOptions{Month: 3}, wantErr: true},
		{name: "both forms", opts: QueryOptions{Period: "2024-02", Month: 2, Year: 2024}, wantErr: true},
		{name: "unknown status", opts: QueryOptions{Status: "blue"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.opts.Query()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Period)
		})
	}
}

func TestQueryOptions_NormalizesStatus(t *testing.T) {
	q, err := (&QueryOptions{Status: " RED ", City: " Lyon "}).Query()
	require.NoError(t, err)
	assert.Equal(t, analyticsdomain.StatusRed, q.Status)
	assert.Equal(t, "Lyon", q.City)
}

func TestRootCommand_InvalidOutput(t *testing.T) {
	_, err := execute(t, "criteria", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCriteriaCommand_Default(t *testing.T) {
	t.Setenv("RAG_CRITERIA_FILE", "")
	t.Setenv("RAG_POLICY", "declining")

	out, err := execute(t, "criteria")
	require.NoError(t, err)
	assert.Contains(t, out, "A_PLUS")
	assert.Contains(t, out, "70.00")
	assert.Contains(t, out, "policy: declining")
}

func TestCriteriaCommand_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte("A_PLUS: {green: 80, amber: 60}\nB: {green: 45, amber: 25}\n"), 0o600))
	t.Setenv("RAG_CRITERIA_FILE", path)
	t.Setenv("RAG_POLICY", "")

	out, err := execute(t, "criteria", "--output", "json")
	require.NoError(t, err)

	var body struct {
		Criteria map[string]analyticsdomain.Thresholds `json:"criteria"`
		Policy   string                                `json:"policy"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, analyticsdomain.Thresholds{Green: 80, Amber: 60}, body.Criteria["A_PLUS"])
	assert.Len(t, body.Criteria, 2)
	assert.Equal(t, "none", body.Policy)
}

func TestCriteriaCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Z: {green: 10, amber: 5}\n"), 0o600))
	t.Setenv("RAG_CRITERIA_FILE", path)

	_, err := execute(t, "criteria")
	require.Error(t, err)
	assert.ErrorIs(t, err, analyticsdomain.ErrConfiguration)
}

func TestIngestCommand_RequiresFile(t *testing.T) {
	_, err := execute(t, "ingest")
	assert.Error(t, err)
}

func TestIngestCommand_RefusesUnsharedCache(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")

	_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "samples.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheNotShared)
	assert.Contains(t, err.Error(), "--server")
}

func TestIngestCommand_ForceWarnsOnUnsharedCache(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_TTL", "5m")

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// fichier absent: la commande s'arrête après l'avertissement, avant la base
	cmd.SetArgs([]string{"ingest", "--force", filepath.Join(t.TempDir(), "missing.csv")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, errOut.String(), "stale reports for up to 5m0s")
}

type stubIngester struct {
	result *salesapp.IngestResult
	err    error
	body   string
}

func (s *stubIngester) IngestCSV(_ context.Context, r io.Reader) (*salesapp.IngestResult, error) {
	raw, _ := io.ReadAll(r)
	s.body = string(raw)
	return s.result, s.err
}

func newIngestServer(t *testing.T, ingester *stubIngester) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	v1.NewHandlers(nil, nil, ingester).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeSamples(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCommand_PostsToServer(t *testing.T) {
	// le serveur invalide son cache: aucune exigence sur le backend local
	t.Setenv("CACHE_BACKEND", "memory")

	batch := uuid.New()
	ingester := &stubIngester{result: &salesapp.IngestResult{
		BatchID:  batch,
		Accepted: 2,
		Rejected: []salesapp.RowError{{Line: 4, Reason: "plan_sales > device_sales"}},
		Periods:  []shareddomain.Period{shareddomain.MustNewPeriod(5, 2024)},
	}}
	srv := newIngestServer(t, ingester)

	csv := "store_id,brand_id,brand_tier,month,year,device_sales,plan_sales\n1,1,A,5,2024,10,5\n"
	path := writeSamples(t, csv)

	out, err := execute(t, "ingest", "--server", srv.URL+"/", "--output", "json", path)
	require.NoError(t, err)
	assert.Equal(t, csv, ingester.body)

	var got salesapp.IngestResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, batch, got.BatchID)
	assert.Equal(t, 2, got.Accepted)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, 4, got.Rejected[0].Line)
}

func TestPostSamples_DecodesPeriods(t *testing.T) {
	ingester := &stubIngester{result: &salesapp.IngestResult{
		BatchID:  uuid.New(),
		Accepted: 1,
		Periods:  []shareddomain.Period{shareddomain.MustNewPeriod(5, 2024), shareddomain.MustNewPeriod(6, 2024)},
	}}
	srv := newIngestServer(t, ingester)

	result, err := postSamples(context.Background(), srv.URL, bytes.NewBufferString("x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05", "2024-06"}, result.PeriodLabels())
}

func TestIngestCommand_ServerAllRejected(t *testing.T) {
	ingester := &stubIngester{result: &salesapp.IngestResult{
		BatchID:  uuid.New(),
		Rejected: []salesapp.RowError{{Line: 2, Reason: "bad month"}},
	}}
	srv := newIngestServer(t, ingester)

	out, err := execute(t, "ingest", "--server", srv.URL, "--output", "json", writeSamples(t, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid sample")
	assert.Contains(t, out, "bad month")
}

func TestIngestCommand_ServerError(t *testing.T) {
	srv := newIngestServer(t, &stubIngester{err: salesapp.ErrMissingColumn})

	_, err := execute(t, "ingest", "--server", srv.URL, "--output", "json", writeSamples(t, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), v1.CodeInvalidRequest)
}
