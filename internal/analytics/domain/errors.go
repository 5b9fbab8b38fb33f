package domain

import (
	"errors"
	"fmt"

	catalogdomain "ragreport/internal/catalog/domain"
)

var (
	// ErrConfiguration est la sentinelle des erreurs de configuration des seuils
	ErrConfiguration = errors.New("configuration error")
	// ErrNoData est la sentinelle des magasins sans données exploitables
	ErrNoData = errors.New("no data")
)

// ConfigurationError signale un tier sans seuils (ou des seuils invalides)
// Fatale pour l'appel de classification, jamais remplacée par un défaut
type ConfigurationError struct {
	Tier   catalogdomain.BrandTier
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("configuration: %s", e.Reason)
	}
	return fmt.Sprintf("configuration: tier %q: %s", e.Tier, e.Reason)
}

// Is permet errors.Is(err, ErrConfiguration)
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NoDataError signale un magasin sans aucun détail de marque pour la période
// L'appelant exclut le magasin des agrégats
type NoDataError struct {
	StoreID catalogdomain.StoreID
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data: store %d has no qualifying brand samples", e.StoreID)
}

// Is permet errors.Is(err, ErrNoData)
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}
