package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	v1 "ragreport/api/v1"
	"ragreport/database"
	analyticsapp "ragreport/internal/analytics/application"
	cataloginfra "ragreport/internal/catalog/infrastructure"
	"ragreport/internal/config"
	exportapp "ragreport/internal/export/application"
	salesapp "ragreport/internal/sales/application"
	salesinfra "ragreport/internal/sales/infrastructure"
	sharedinfra "ragreport/internal/shared/infrastructure"
)

const (
	cacheNamespace  = "ragreport"
	reportKeyPrefix = "rag:"
)

// App regroupe les dépendances câblées de l'application (serveur HTTP et CLI)
type App struct {
	DB      *sql.DB
	Cache   sharedinfra.Cache
	Reports *analyticsapp.ReportService
	Ingest  *salesapp.IngestService
	Export  *exportapp.ExportService

	redis *sharedinfra.RedisCache
}

// New ouvre la base, crée le schéma et câble les services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := database.Init(cfg.DB.ConnString()); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &App{DB: database.DB}

	if err := database.EnsureSchema(ctx, a.DB); err != nil {
		a.Close()
		return nil, err
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		rc := sharedinfra.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cacheNamespace)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		a.redis = rc
		a.Cache = rc
	default:
		a.Cache = sharedinfra.NewShardedCache(16)
	}

	criteria, err := cfg.Criteria()
	if err != nil {
		a.Close()
		return nil, err
	}
	policy, err := cfg.EscalationPolicy()
	if err != nil {
		a.Close()
		return nil, err
	}

	reports, err := analyticsapp.NewReportService(
		cataloginfra.NewStoreQueryRepository(a.DB),
		salesinfra.NewSampleQueryRepository(a.DB),
		a.Cache,
		analyticsapp.Options{
			Criteria: criteria,
			Policy:   policy,
			CacheTTL: cfg.Cache.TTL,
			Workers:  cfg.ReportWorkers,
		},
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Reports = reports
	a.Ingest = salesapp.NewIngestService(salesinfra.NewSampleCommandRepository(a.DB), reports)
	a.Export = exportapp.NewExportService(reports)

	slog.Info("application wired",
		"cache", cfg.Cache.Backend,
		"policy", policy.Name(),
		"workers", cfg.ReportWorkers)
	return a, nil
}

// SharedCache indique si le cache des rapports est partagé entre processus (Redis)
// Avec le cache mémoire, une écriture faite ici n'invalide pas le cache du serveur
func (a *App) SharedCache() bool {
	return a.redis != nil
}

// ClearReportCache vide les rapports en cache après une écriture faite hors du serveur
// Retourne false sans rien faire si le cache est en mémoire (propre à chaque processus)
func ClearReportCache(ctx context.Context, cfg config.CacheConfig) (bool, error) {
	if cfg.Backend != config.CacheBackendRedis {
		return false, nil
	}
	rc := sharedinfra.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cacheNamespace)
	defer rc.Close()

	if err := rc.Ping(ctx); err != nil {
		return false, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	removed := rc.DeletePrefix(reportKeyPrefix)
	slog.Info("report cache cleared", "entries", removed)
	return true, nil
}

// Handlers construit les handlers HTTP avec les health checks des dépendances
func (a *App) Handlers() *v1.Handlers {
	h := v1.NewHandlers(a.Reports, a.Export, a.Ingest)
	h.AddHealthCheck("postgres", a.DB.PingContext)
	if a.redis != nil {
		h.AddHealthCheck("redis", a.redis.Ping)
	}
	return h
}

// Close libère la connexion DB et le client Redis
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("close redis", "err", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Warn("close database", "err", err)
	}
}
