package testhelpers

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"ragreport/database"
	cataloginfra "ragreport/internal/catalog/infrastructure"
	salesinfra "ragreport/internal/sales/infrastructure"
	sharedinfra "ragreport/internal/shared/infrastructure"
)

// TestContext contient toutes les dépendances pour les tests d'intégration
// Note: Ne contient PAS les services pour éviter les import cycles
// Les tests doivent créer leurs propres services en utilisant ce contexte
type TestContext struct {
	DB *sql.DB

	// Repositories
	StoreQueryRepo    *cataloginfra.StoreQueryRepository
	SampleQueryRepo   *salesinfra.SampleQueryRepository
	SampleCommandRepo *salesinfra.SampleCommandRepository

	// Infrastructure
	Cache sharedinfra.Cache
}

// connString construit la connection string de test depuis l'environnement
func connString() string {
	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	return database.ConnString(
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "raguser"),
		getEnv("DB_PASSWORD", "ragpass"),
		getEnv("DB_NAME", "ragdb"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// SetupTestDB initialise une connexion à la base de données de test
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("postgres", connString())
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}

	// Configuration du pool de connexions (optimisé pour tests)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		tb.Fatalf("Failed to ping database: %v (password hidden)", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		tb.Fatalf("Failed to ensure schema: %v", err)
	}

	return db
}

// SetupTestContext initialise un contexte de test avec DB et repositories
// Les services doivent être créés par les tests eux-mêmes pour éviter les import cycles
func SetupTestContext(tb testing.TB) *TestContext {
	tb.Helper()

	ctx := &TestContext{}

	// 1. Initialiser la connexion DB
	ctx.DB = SetupTestDB(tb)

	// 2. Initialiser l'infrastructure partagée
	ctx.Cache = sharedinfra.NewShardedCache(16)

	// 3. Initialiser les repositories
	ctx.StoreQueryRepo = cataloginfra.NewStoreQueryRepository(ctx.DB)
	ctx.SampleQueryRepo = salesinfra.NewSampleQueryRepository(ctx.DB)
	ctx.SampleCommandRepo = salesinfra.NewSampleCommandRepository(ctx.DB)

	return ctx
}

// Cleanup libère les ressources du contexte de test
func (ctx *TestContext) Cleanup() {
	if ctx.DB != nil {
		ctx.DB.Close()
	}
}

// ClearCache vide le cache (utile entre les benchmarks)
func (ctx *TestContext) ClearCache() {
	if ctx.Cache != nil {
		ctx.Cache.Clear()
	}
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	db, err := sql.Open("postgres", connString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		tb.Skip("Database not available:", err)
	}
}
