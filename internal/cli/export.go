package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	analyticsapp "ragreport/internal/analytics/application"
	"ragreport/internal/app"
	exportdomain "ragreport/internal/export/domain"
	shareddomain "ragreport/internal/shared/domain"
)

// NewExportCommand crée la commande export
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	qo := &QueryOptions{}
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store x brand RAG rows as CSV or Parquet",
		Long: `Export one row per store and brand for the requested month.

CSV is written to stdout unless --out is set. Parquet always goes to a file,
named rag_status_<YYYY-MM>.parquet when --out is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportdomain.ParseExportFormat(format)
			if err != nil {
				return err
			}
			q, err := qo.Query()
			if err != nil {
				return err
			}
			if q.Period.IsZero() {
				q.Period = shareddomain.CurrentPeriod(time.Now())
			}
			if out == "" && f == exportdomain.ExportFormatParquet {
				job, err := exportdomain.NewExportJob(f, q.Period)
				if err != nil {
					return err
				}
				out = job.FileName()
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				start := time.Now()
				var rows int
				switch {
				case f == exportdomain.ExportFormatParquet:
					rows, err = a.Export.ExportParquet(cmd.Context(), q, out)
				case out == "":
					rows, err = a.Export.WriteCSV(cmd.Context(), q, cmd.OutOrStdout())
				default:
					rows, err = writeCSVFile(cmd, a, q, out)
				}
				if err != nil {
					return err
				}
				slog.Info("export done", "format", f, "rows", rows, "out", out, "took", time.Since(start))
				if out != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d rows written to %s\n", rows, out)
				}
				return nil
			})
		},
	}
	qo.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "export format (csv|parquet)")
	cmd.Flags().StringVar(&out, "out", "", "output file")

	return cmd
}

func writeCSVFile(cmd *cobra.Command, a *app.App, q analyticsapp.ReportQuery, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	rows, err := a.Export.WriteCSV(cmd.Context(), q, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return rows, err
}
