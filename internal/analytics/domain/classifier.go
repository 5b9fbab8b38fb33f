package domain

import (
	"errors"
	"fmt"

	salesdomain "ragreport/internal/sales/domain"
)

// TrendEpsilon est la marge (en points de pourcentage) en dessous de laquelle
// une variation d'attach rate est considérée comme du bruit
const TrendEpsilon = 0.01

// Classify classe une marque d'un magasin à partir de l'échantillon du mois
// courant et, si disponible, de celui du mois précédent.
//
// Fonction pure: aucun état partagé, même entrée → même sortie.
// FinalStatus == BaseStatus; l'escalade par tendance relève d'une
// EscalationPolicy appliquée ensuite par l'appelant.
func Classify(current, previous *salesdomain.AttachRateSample, criteria Criteria) (BrandRAGDetail, error) {
	if current == nil {
		return BrandRAGDetail{}, errors.New("classify: current sample is required")
	}
	if previous != nil && (previous.StoreID() != current.StoreID() || previous.BrandID() != current.BrandID()) {
		return BrandRAGDetail{}, fmt.Errorf("classify: previous sample (%s) does not match current sample (%s)",
			previous.Key(), current.Key())
	}

	thresholds, err := criteria.For(current.BrandTier())
	if err != nil {
		return BrandRAGDetail{}, err
	}

	// Sans appareil vendu le taux est indéfini: aucune activité d'attach → red
	currentRate := 0.0
	base := StatusRed
	if current.HasDeviceSales() {
		currentRate = current.AttachPct()
		base = statusFor(currentRate, thresholds)
	}

	previousRate := 0.0
	change := TrendStable
	if previous != nil && previous.HasDeviceSales() {
		previousRate = previous.AttachPct()
		change = trendBetween(currentRate, previousRate)
	}

	return BrandRAGDetail{
		BrandID:            current.BrandID(),
		BrandTier:          current.BrandTier(),
		CurrentAttachRate:  currentRate,
		PreviousAttachRate: previousRate,
		BaseStatus:         base,
		FinalStatus:        base,
		PerformanceChange:  change,
	}, nil
}

// statusFor applique les seuils du tier: seuils inclusifs côté green et amber
func statusFor(rate float64, t Thresholds) Status {
	switch {
	case rate >= t.Green:
		return StatusGreen
	case rate >= t.Amber:
		return StatusAmber
	default:
		return StatusRed
	}
}

func trendBetween(current, previous float64) Trend {
	delta := current - previous
	switch {
	case delta > TrendEpsilon:
		return TrendImproved
	case delta < -TrendEpsilon:
		return TrendDeclined
	default:
		return TrendStable
	}
}
