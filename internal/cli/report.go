package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	analyticsapp "ragreport/internal/analytics/application"
	analyticsdomain "ragreport/internal/analytics/domain"
	"ragreport/internal/app"
	catalogdomain "ragreport/internal/catalog/domain"
	shareddomain "ragreport/internal/shared/domain"
)

// QueryOptions filtres communs à report et export
type QueryOptions struct {
	Period string
	Month  int
	Year   int
	City   string
	Brand  string
	Status string
}

func (o *QueryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Period, "period", "", "report month as YYYY-MM (default: current month)")
	cmd.Flags().IntVar(&o.Month, "month", 0, "report month (1-12), with --year")
	cmd.Flags().IntVar(&o.Year, "year", 0, "report year, with --month")
	cmd.Flags().StringVar(&o.City, "city", "", "only stores in this city")
	cmd.Flags().StringVar(&o.Brand, "brand", "", "only stores carrying this brand")
	cmd.Flags().StringVar(&o.Status, "status", "", "only stores with this status (green|amber|red)")
}

// Query construit la requête de rapport à partir des flags
func (o *QueryOptions) Query() (analyticsapp.ReportQuery, error) {
	q := analyticsapp.ReportQuery{
		City:   strings.TrimSpace(o.City),
		Brand:  strings.TrimSpace(o.Brand),
		Status: analyticsdomain.Status(strings.ToLower(strings.TrimSpace(o.Status))),
	}

	switch {
	case o.Period != "" && (o.Month != 0 || o.Year != 0):
		return q, fmt.Errorf("--period cannot be combined with --month/--year")
	case o.Period != "":
		p, err := shareddomain.ParsePeriod(o.Period)
		if err != nil {
			return q, err
		}
		q.Period = p
	case o.Month != 0 || o.Year != 0:
		p, err := shareddomain.NewPeriod(o.Month, o.Year)
		if err != nil {
			return q, err
		}
		q.Period = p
	}

	return q, q.Validate()
}

// NewReportCommand crée la commande report
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	qo := &QueryOptions{}
	var summary bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the RAG status of every store for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qo.Query()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				return runReport(cmd, a.Reports, rootOpts, q, summary)
			})
		},
	}
	qo.bind(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "condensed per-store view without brand details")

	return cmd
}

func runReport(cmd *cobra.Command, reports *analyticsapp.ReportService, opts *RootOptions, q analyticsapp.ReportQuery, summary bool) error {
	out := cmd.OutOrStdout()
	if summary {
		resp, err := reports.SummaryReport(cmd.Context(), q)
		if err != nil {
			return err
		}
		if opts.Format == "json" {
			return writeJSON(out, resp)
		}
		return printSummary(out, resp)
	}

	resp, err := reports.StatusReport(cmd.Context(), q)
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(out, resp)
	}
	return printStatus(out, resp)
}

// printStatus affiche un magasin par ligne puis le résumé flotte
func printStatus(w io.Writer, resp *analyticsapp.RAGStatusResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tSTORE\tCITY\tSTATUS\tTREND\tGREEN\tAMBER\tRED\n")
	for _, s := range resp.Stores {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			s.ID, s.StoreName, s.City, s.RAGStatus, s.Trend(), s.GreenBrands, s.AmberBrands, s.RedBrands)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printFooter(w, resp.Summary, resp.Metadata)
	return nil
}

func printSummary(w io.Writer, resp *analyticsapp.RAGSummaryResponse) error {
	ids := make([]int, 0, len(resp.RAGSummary))
	for id := range resp.RAGSummary {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tSTORE\tSTATUS\tTREND\tBRANDS\n")
	for _, id := range ids {
		s := resp.RAGSummary[catalogdomain.StoreID(id)]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", id, s.StoreName, s.RAGStatus, s.Trend, s.TotalBrands)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printFooter(w, resp.Summary, resp.Metadata)
	return nil
}

func printFooter(w io.Writer, sum analyticsdomain.RAGSummary, meta analyticsapp.ReportMetadata) {
	fmt.Fprintf(w, "\n%s (vs %s), policy %s: %d stores, %d green, %d amber, %d red\n",
		meta.Period(), meta.Period().Previous(),
		meta.Policy, sum.Total, sum.Green, sum.Amber, sum.Red)
	if n := len(meta.RejectedSamples); n > 0 {
		fmt.Fprintf(w, "%d sample(s) rejected for data integrity\n", n)
	}
	if n := len(meta.InsufficientData); n > 0 {
		fmt.Fprintf(w, "%d store(s) without data: %v\n", n, meta.InsufficientData)
	}
}
