package domain

import (
	"errors"
	"strings"
)

// StoreID représente l'identifiant d'un magasin
type StoreID int64

// Store représente un point de vente et ses marques partenaires
type Store struct {
	id            StoreID
	name          string
	city          string
	address       string
	partnerBrands []*Brand
}

// NewStore crée un nouveau magasin avec validation
func NewStore(
	id StoreID,
	name string,
	city string,
	address string,
	partnerBrands []*Brand,
) (*Store, error) {
	if id <= 0 {
		return nil, errors.New("invalid store ID")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("store name cannot be empty")
	}

	return &Store{
		id:            id,
		name:          name,
		city:          city,
		address:       address,
		partnerBrands: append([]*Brand{}, partnerBrands...),
	}, nil
}

// ID retourne l'identifiant du magasin
func (s *Store) ID() StoreID {
	return s.id
}

// Name retourne le nom du magasin
func (s *Store) Name() string {
	return s.name
}

// City retourne la ville
func (s *Store) City() string {
	return s.city
}

// Address retourne l'adresse
func (s *Store) Address() string {
	return s.address
}

// PartnerBrands retourne une copie des marques partenaires
func (s *Store) PartnerBrands() []*Brand {
	return append([]*Brand{}, s.partnerBrands...)
}

// PartnerBrand retourne la marque partenaire d'ID donné
func (s *Store) PartnerBrand(id BrandID) (*Brand, bool) {
	for _, b := range s.partnerBrands {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// PartnerBrandNames retourne les noms des marques partenaires
func (s *Store) PartnerBrandNames() []string {
	names := make([]string, 0, len(s.partnerBrands))
	for _, b := range s.partnerBrands {
		names = append(names, b.Name())
	}
	return names
}

// HasPartnerBrand vérifie si le magasin distribue la marque (insensible à la casse)
func (s *Store) HasPartnerBrand(name string) bool {
	for _, b := range s.partnerBrands {
		if strings.EqualFold(b.Name(), name) {
			return true
		}
	}
	return false
}

// StoreFilter regroupe les filtres de sélection des magasins
type StoreFilter struct {
	City  string
	Brand string
}
