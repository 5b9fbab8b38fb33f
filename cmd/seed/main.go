package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ragreport/database"
	"ragreport/internal/app"
	"ragreport/internal/config"
)

func main() {
	// Charge .env puis l'environnement
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration invalide:", err)
	}

	err = database.Init(cfg.DB.ConnString())
	if err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer database.Close()

	fmt.Println("✅ Connexion PostgreSQL établie")

	months, err := strconv.Atoi(getEnv("SEED_MONTHS", "24"))
	if err != nil {
		log.Fatal("❌ SEED_MONTHS invalide:", err)
	}

	fmt.Println("🌱 Démarrage du seed de la base de données...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	err = database.SeedDatabase(context.Background(), months, time.Now())
	if err != nil {
		log.Fatal("❌ Erreur lors du seed:", err)
	}

	// Les rapports déjà en cache ne reflètent plus la base
	cleared, err := app.ClearReportCache(context.Background(), cfg.Cache)
	switch {
	case err != nil:
		log.Fatal("❌ Erreur invalidation du cache Redis:", err)
	case cleared:
		fmt.Println("🧹 Cache des rapports (Redis) vidé")
	default:
		fmt.Printf("⚠️  CACHE_BACKEND=%s: redémarrer le serveur s'il tourne, sinon ses rapports restent périmés jusqu'à %s\n", cfg.Cache.Backend, cfg.Cache.TTL)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("✅ Seed terminé avec succès!")
	fmt.Println()
	fmt.Println("Vous pouvez maintenant démarrer l'application avec:")
	fmt.Println("  go run main.go")
	fmt.Println()
	fmt.Println("Et tester les endpoints:")
	fmt.Println("  http://localhost:8080/api/v1/rag/status")
	fmt.Println("  http://localhost:8080/api/v1/rag/summary?city=Paris")
	fmt.Println("  http://localhost:8080/api/v1/rag/export/csv")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
