package domain

import (
	"errors"
	"fmt"
	"math"

	catalogdomain "ragreport/internal/catalog/domain"
	"ragreport/internal/shared/domain"
)

// SampleKey identifie un échantillon: un magasin, une marque, un mois
// Un magasin accumule au plus un échantillon par clé
type SampleKey struct {
	StoreID catalogdomain.StoreID
	BrandID catalogdomain.BrandID
	Period  domain.Period
}

// String retourne une représentation lisible de la clé
func (k SampleKey) String() string {
	return fmt.Sprintf("store=%d brand=%d period=%s", k.StoreID, k.BrandID, k.Period)
}

// AttachRateSample représente les ventes d'une marque dans un magasin sur un mois
// Immutable une fois créé: pas de setters
type AttachRateSample struct {
	key         SampleKey
	brandTier   catalogdomain.BrandTier
	deviceSales domain.Quantity
	planSales   domain.Quantity
	attachPct   float64
}

// NewAttachRateSample crée un échantillon et calcule son attach rate
// attachPct = planSales / deviceSales × 100, 0 si deviceSales == 0.
// Les échantillons incohérents sont rejetés avec une *DataIntegrityError,
// jamais corrigés silencieusement.
func NewAttachRateSample(
	key SampleKey,
	brandTier catalogdomain.BrandTier,
	deviceSales int,
	planSales int,
) (*AttachRateSample, error) {
	if key.StoreID <= 0 {
		return nil, newIntegrityError(key, "invalid store ID")
	}
	if key.BrandID <= 0 {
		return nil, newIntegrityError(key, "invalid brand ID")
	}
	if key.Period.IsZero() {
		return nil, newIntegrityError(key, "missing period")
	}

	devices, err := domain.NewQuantity(deviceSales)
	if err != nil {
		return nil, newIntegrityError(key, fmt.Sprintf("device sales %d: %v", deviceSales, err))
	}
	plans, err := domain.NewQuantity(planSales)
	if err != nil {
		return nil, newIntegrityError(key, fmt.Sprintf("plan sales %d: %v", planSales, err))
	}

	// Des ventes de plans sans appareil donnent un taux infini
	if devices.IsZero() && !plans.IsZero() {
		return nil, newIntegrityError(key, fmt.Sprintf("%d plan sales recorded without device sales", planSales))
	}

	pct := plans.Ratio(devices)
	if err := ValidateAttachRate(pct); err != nil {
		return nil, newIntegrityError(key, err.Error())
	}

	return &AttachRateSample{
		key:         key,
		brandTier:   brandTier,
		deviceSales: devices,
		planSales:   plans,
		attachPct:   pct,
	}, nil
}

// ValidateAttachRate vérifie qu'un taux est fini et compris dans [0, 100]
func ValidateAttachRate(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return errors.New("attach rate is not a finite number")
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("attach rate %.2f%% is outside [0, 100]", pct)
	}
	return nil
}

// Key retourne la clé de l'échantillon
func (s *AttachRateSample) Key() SampleKey {
	return s.key
}

// StoreID retourne l'identifiant du magasin
func (s *AttachRateSample) StoreID() catalogdomain.StoreID {
	return s.key.StoreID
}

// BrandID retourne l'identifiant de la marque
func (s *AttachRateSample) BrandID() catalogdomain.BrandID {
	return s.key.BrandID
}

// Period retourne le mois de l'échantillon
func (s *AttachRateSample) Period() domain.Period {
	return s.key.Period
}

// BrandTier retourne le tier de la marque au moment de l'enregistrement
func (s *AttachRateSample) BrandTier() catalogdomain.BrandTier {
	return s.brandTier
}

// DeviceSales retourne le nombre d'appareils vendus
func (s *AttachRateSample) DeviceSales() domain.Quantity {
	return s.deviceSales
}

// PlanSales retourne le nombre de plans vendus
func (s *AttachRateSample) PlanSales() domain.Quantity {
	return s.planSales
}

// AttachPct retourne l'attach rate en pourcentage
func (s *AttachRateSample) AttachPct() float64 {
	return s.attachPct
}

// HasDeviceSales indique si le taux est défini (au moins un appareil vendu)
func (s *AttachRateSample) HasDeviceSales() bool {
	return !s.deviceSales.IsZero()
}
