package domain

import (
	"fmt"
	"math"

	catalogdomain "ragreport/internal/catalog/domain"
)

// Thresholds est la paire de seuils d'un tier (attach rate minimum en %)
// En dessous de Amber → red
type Thresholds struct {
	Green float64 `json:"green" yaml:"green"`
	Amber float64 `json:"amber" yaml:"amber"`
}

// Validate vérifie 0 <= amber <= green <= 100
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Green) || math.IsNaN(t.Amber) {
		return fmt.Errorf("thresholds must be numbers")
	}
	if t.Amber < 0 || t.Green > 100 {
		return fmt.Errorf("thresholds {green: %.2f, amber: %.2f} must lie within [0, 100]", t.Green, t.Amber)
	}
	if t.Amber > t.Green {
		return fmt.Errorf("amber threshold %.2f is above green threshold %.2f", t.Amber, t.Green)
	}
	return nil
}

// Criteria est la table des seuils par tier
// Configuration opérationnelle passée explicitement à chaque classification
type Criteria map[catalogdomain.BrandTier]Thresholds

// DefaultCriteria retourne la table de seuils par défaut
func DefaultCriteria() Criteria {
	return Criteria{
		catalogdomain.BrandTierAPlus: {Green: 70, Amber: 50},
		catalogdomain.BrandTierA:     {Green: 60, Amber: 40},
		catalogdomain.BrandTierB:     {Green: 50, Amber: 30},
		catalogdomain.BrandTierC:     {Green: 40, Amber: 20},
		catalogdomain.BrandTierD:     {Green: 30, Amber: 15},
	}
}

// For retourne les seuils d'un tier, jamais de valeur par défaut
func (c Criteria) For(tier catalogdomain.BrandTier) (Thresholds, error) {
	t, ok := c[tier]
	if !ok {
		return Thresholds{}, &ConfigurationError{Tier: tier, Reason: "no thresholds configured"}
	}
	return t, nil
}

// Validate vérifie chaque paire de seuils
func (c Criteria) Validate() error {
	if len(c) == 0 {
		return &ConfigurationError{Reason: "criteria table is empty"}
	}
	for tier, t := range c {
		if err := t.Validate(); err != nil {
			return &ConfigurationError{Tier: tier, Reason: err.Error()}
		}
	}
	return nil
}

// Clone retourne une copie indépendante de la table
func (c Criteria) Clone() Criteria {
	out := make(Criteria, len(c))
	for tier, t := range c {
		out[tier] = t
	}
	return out
}
