package domain

import (
	"errors"
	"fmt"
	"strings"
)

// BrandID représente l'identifiant unique d'une marque partenaire
type BrandID int64

// BrandTier représente le niveau d'une marque partenaire
// Le tier détermine quels seuils d'attach rate s'appliquent
type BrandTier string

const (
	BrandTierAPlus BrandTier = "A_PLUS"
	BrandTierA     BrandTier = "A"
	BrandTierB     BrandTier = "B"
	BrandTierC     BrandTier = "C"
	BrandTierD     BrandTier = "D"
)

// AllBrandTiers retourne les tiers connus, du plus exigeant au moins exigeant
func AllBrandTiers() []BrandTier {
	return []BrandTier{BrandTierAPlus, BrandTierA, BrandTierB, BrandTierC, BrandTierD}
}

// ParseBrandTier normalise un tier saisi ("a+", "A_PLUS", "b"...)
// Un tier inconnu est conservé tel quel: c'est au classifieur de le rejeter
func ParseBrandTier(s string) BrandTier {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "A+", "APLUS", "A_PLUS", "A-PLUS":
		return BrandTierAPlus
	}
	return BrandTier(v)
}

// IsKnown vérifie si le tier fait partie de l'énumération
func (t BrandTier) IsKnown() bool {
	for _, known := range AllBrandTiers() {
		if t == known {
			return true
		}
	}
	return false
}

// Brand représente une marque partenaire (Samsung, Apple, ...)
type Brand struct {
	id   BrandID
	name string
	tier BrandTier
}

// NewBrand crée une nouvelle marque avec validation
func NewBrand(id BrandID, name string, tier BrandTier) (*Brand, error) {
	if id <= 0 {
		return nil, errors.New("invalid brand ID")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("brand name cannot be empty")
	}
	if tier == "" {
		return nil, fmt.Errorf("brand %q has no tier", name)
	}

	return &Brand{
		id:   id,
		name: name,
		tier: tier,
	}, nil
}

// ID retourne l'identifiant de la marque
func (b *Brand) ID() BrandID {
	return b.id
}

// Name retourne le nom de la marque
func (b *Brand) Name() string {
	return b.name
}

// Tier retourne le tier de la marque
func (b *Brand) Tier() BrandTier {
	return b.tier
}
