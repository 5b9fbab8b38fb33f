package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	v1 "ragreport/api/v1"
	"ragreport/internal/app"
	"ragreport/internal/config"
	salesapp "ragreport/internal/sales/application"
	shareddomain "ragreport/internal/shared/domain"
)

// ErrCacheNotShared est retournée quand une ingestion locale laisserait le serveur
// servir des rapports périmés (cache mémoire propre à chaque processus)
var ErrCacheNotShared = errors.New("report cache is not shared with the server")

// IngestOptions options de la commande ingest
type IngestOptions struct {
	Server string
	Force  bool
}

// NewIngestCommand crée la commande ingest
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <file.csv|->",
		Short: "Load monthly attach-rate samples from a CSV file",
		Long: `Load monthly device and plan sales per store and brand.

Expected columns (any order): ` + fmt.Sprint(salesapp.CSVColumns) + `
Invalid rows are reported and skipped, valid rows are upserted in one batch.

With --server the file is posted to a running ragreport server, which clears
its own report cache. Without it the database is written directly: this
requires CACHE_BACKEND=redis so the server sees the invalidation, or --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			if opts.Server == "" {
				var err error
				if cfg, err = config.Load(); err != nil {
					return err
				}
				if cfg.Cache.Backend != config.CacheBackendRedis {
					if !opts.Force {
						return fmt.Errorf("%w: use --server URL or CACHE_BACKEND=redis (--force to write anyway)", ErrCacheNotShared)
					}
					fmt.Fprintf(cmd.ErrOrStderr(),
						"⚠️  CACHE_BACKEND=%s: a running server keeps serving stale reports for up to %s\n",
						cfg.Cache.Backend, cfg.Cache.TTL)
				}
			}

			r, closeFn, err := openInput(cmd, args[0], rootOpts.Format == "text")
			if err != nil {
				return err
			}
			defer closeFn()

			var result *salesapp.IngestResult
			if opts.Server != "" {
				result, err = postSamples(cmd.Context(), opts.Server, r)
			} else {
				err = withConfiguredApp(cmd.Context(), cfg, func(a *app.App) error {
					result, err = a.Ingest.IngestCSV(cmd.Context(), r)
					return err
				})
			}
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printIngest(cmd.OutOrStdout(), result)
			}
			if result.Accepted == 0 && len(result.Rejected) > 0 {
				return fmt.Errorf("no valid sample in %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "", "ragreport server URL (e.g. http://localhost:8080)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "write to the database even if the server cache will not be cleared")
	return cmd
}

// ingestReply corps de réponse de POST /api/v1/rag/samples (succès ou erreur)
type ingestReply struct {
	salesapp.IngestResult
	Periods []string        `json:"periods"`
	Error   *v1.ErrorDetail `json:"error"`
}

// postSamples envoie le CSV au serveur, qui invalide lui-même son cache
func postSamples(ctx context.Context, server string, body io.Reader) (*salesapp.IngestResult, error) {
	url := strings.TrimRight(server, "/") + "/api/v1/rag/samples"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/csv")

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post samples: %w", err)
	}
	defer resp.Body.Close()

	var reply ingestReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode server response (%s): %w", resp.Status, err)
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("server: %s (%s)", reply.Error.Message, reply.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("server: unexpected status %s", resp.Status)
	}

	result := reply.IngestResult
	for _, label := range reply.Periods {
		p, err := shareddomain.ParsePeriod(label)
		if err != nil {
			return nil, fmt.Errorf("server period %q: %w", label, err)
		}
		result.Periods = append(result.Periods, p)
	}
	return &result, nil
}

// openInput ouvre le fichier (ou stdin pour "-"), avec barre de progression sur stderr
func openInput(cmd *cobra.Command, path string, progress bool) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !progress {
		return f, func() { f.Close() }, nil
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	bar := progressbar.DefaultBytes(info.Size(), "ingest")
	return io.TeeReader(f, bar), func() {
		_ = bar.Finish()
		f.Close()
	}, nil
}

func printIngest(w io.Writer, result *salesapp.IngestResult) {
	fmt.Fprintf(w, "batch %s: %d accepted, %d rejected\n", result.BatchID, result.Accepted, len(result.Rejected))
	if len(result.Periods) > 0 {
		fmt.Fprintf(w, "periods: %v\n", result.PeriodLabels())
	}
	for _, r := range result.Rejected {
		fmt.Fprintf(w, "  line %d: %s\n", r.Line, r.Reason)
	}
}
