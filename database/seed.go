package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"
)

// seedBrands marques partenaires de référence
var seedBrands = []BrandRow{
	{Name: "Samsung", Tier: "A_PLUS"},
	{Name: "Apple", Tier: "A_PLUS"},
	{Name: "Xiaomi", Tier: "A"},
	{Name: "Google", Tier: "A"},
	{Name: "Oppo", Tier: "B"},
	{Name: "Motorola", Tier: "B"},
	{Name: "Honor", Tier: "C"},
	{Name: "Nokia", Tier: "C"},
	{Name: "Crosscall", Tier: "D"},
	{Name: "Fairphone", Tier: "D"},
}

// seedStores magasins de référence
var seedStores = []StoreRow{
	{Name: "Store Paris Centre", City: "Paris", Address: "12 rue de Rivoli"},
	{Name: "Store Paris La Défense", City: "Paris", Address: "15 parvis de la Défense"},
	{Name: "Store Lyon Part-Dieu", City: "Lyon", Address: "17 rue du Docteur Bouchut"},
	{Name: "Store Marseille Vieux-Port", City: "Marseille", Address: "2 quai du Port"},
	{Name: "Store Toulouse Capitole", City: "Toulouse", Address: "1 place du Capitole"},
	{Name: "Store Bordeaux Chartrons", City: "Bordeaux", Address: "40 cours du Médoc"},
	{Name: "Store Nice Promenade", City: "Nice", Address: "5 promenade des Anglais"},
	{Name: "Store Nantes Commerce", City: "Nantes", Address: "3 place du Commerce"},
	{Name: "Store Strasbourg Centre", City: "Strasbourg", Address: "8 place Kléber"},
	{Name: "Store Lille Europe", City: "Lille", Address: "100 centre Euralille"},
}

// SeedDatabase peuple marques, magasins et échantillons mensuels
// sur les `months` derniers mois (mois courant inclus)
func SeedDatabase(ctx context.Context, months int, now time.Time) error {
	if months <= 0 {
		return fmt.Errorf("months must be positive, got %d", months)
	}
	if err := EnsureSchema(ctx, DB); err != nil {
		return err
	}

	fmt.Println("🌱 Génération des données de référence...")

	// 1. Marques
	brands, err := seedBrandRows(ctx)
	if err != nil {
		return fmt.Errorf("erreur génération marques: %w", err)
	}

	// 2. Magasins
	stores, err := seedStoreRows(ctx)
	if err != nil {
		return fmt.Errorf("erreur génération magasins: %w", err)
	}

	// 3. Marques partenaires de chaque magasin
	partners, err := seedPartnerships(ctx, stores, brands)
	if err != nil {
		return fmt.Errorf("erreur liaison magasins-marques: %w", err)
	}

	// 4. Ventes mensuelles
	fmt.Println("🌱 Génération des ventes mensuelles...")
	if err := seedSamples(ctx, months, now, partners); err != nil {
		return fmt.Errorf("erreur génération échantillons: %w", err)
	}

	// 5. Analyse finale
	fmt.Println("🔍 Analyse des tables...")
	if _, err := DB.ExecContext(ctx, "ANALYZE"); err != nil {
		fmt.Println("⚠️ Attention: échec de l'analyse:", err)
	}

	return nil
}

func seedBrandRows(ctx context.Context) ([]BrandRow, error) {
	fmt.Printf("   🏷️  Génération de %d marques...\n", len(seedBrands))

	rows := make([]BrandRow, 0, len(seedBrands))
	for _, b := range seedBrands {
		err := DB.QueryRowContext(ctx, `
			INSERT INTO brands (name, tier)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET tier = EXCLUDED.tier
			RETURNING id, created_at
		`, b.Name, b.Tier).Scan(&b.ID, &b.CreatedAt)
		if err != nil {
			return nil, err
		}
		rows = append(rows, b)
	}

	fmt.Printf("   ✅ %d marques créées\n", len(rows))
	return rows, nil
}

func seedStoreRows(ctx context.Context) ([]StoreRow, error) {
	fmt.Printf("   🏪 Génération de %d magasins...\n", len(seedStores))

	rows := make([]StoreRow, 0, len(seedStores))
	for _, s := range seedStores {
		err := DB.QueryRowContext(ctx, `
			INSERT INTO stores (name, city, address)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, s.Name, s.City, s.Address).Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}

	fmt.Printf("   ✅ %d magasins créés\n", len(rows))
	return rows, nil
}

// partnership couple magasin × marque avec un attach rate de base
type partnership struct {
	store    StoreRow
	brand    BrandRow
	baseRate float64
}

// seedPartnerships donne 4 à 8 marques à chaque magasin
func seedPartnerships(ctx context.Context, stores []StoreRow, brands []BrandRow) ([]partnership, error) {
	fmt.Printf("   🔗 Liaison magasins-marques...\n")

	var partners []partnership
	for _, store := range stores {
		count := 4 + rand.Intn(5)
		for _, i := range rand.Perm(len(brands))[:min(count, len(brands))] {
			brand := brands[i]
			if _, err := DB.ExecContext(ctx, `
				INSERT INTO store_brands (store_id, brand_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, store.ID, brand.ID); err != nil {
				return nil, err
			}
			partners = append(partners, partnership{
				store:    store,
				brand:    brand,
				baseRate: 15 + rand.Float64()*65,
			})
		}
	}

	fmt.Printf("   ✅ %d liaisons créées\n", len(partners))
	return partners, nil
}

// seedSamples écrit un échantillon par partenariat et par mois, dans une transaction
// L'attach rate dérive de ±8 points par mois autour de la base
func seedSamples(ctx context.Context, months int, now time.Time, partners []partnership) error {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	bar := progressbar.Default(int64(months*len(partners)), "samples")

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attach_rate_samples (store_id, brand_id, brand_tier, month, year, device_sales, plan_sales)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (store_id, brand_id, year, month) DO UPDATE SET
			brand_tier = EXCLUDED.brand_tier,
			device_sales = EXCLUDED.device_sales,
			plan_sales = EXCLUDED.plan_sales
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	startTime := time.Now()
	total := 0
	for _, p := range partners {
		rate := p.baseRate
		for m := 0; m < months; m++ {
			month := start.AddDate(0, m, 0)
			rate = min(95, max(2, rate+(rand.Float64()*16-8)))

			devices := 20 + rand.Intn(180)
			// Quelques mois sans vente pour exercer le cas "aucune vente d'appareil"
			if rand.Intn(50) == 0 {
				devices = 0
			}
			plans := int(float64(devices) * rate / 100)

			if _, err := stmt.ExecContext(ctx,
				p.store.ID, p.brand.ID, p.brand.Tier,
				int(month.Month()), month.Year(), devices, plans,
			); err != nil {
				return err
			}
			total++
			_ = bar.Add(1)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	fmt.Printf("\n   ✅ %d échantillons créés en %v\n", total, time.Since(startTime))
	return nil
}
